// Package mockapi serves the document service HTTP contract from fixtures so
// the client can be run and tested without the real backend.
package mockapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/bekirdag/secdeck/internal/secapi"
	"github.com/bekirdag/secdeck/internal/workflow"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pptxType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

	maxSearchResults = 20
	scanTTL          = 30 * time.Minute
)

type Server struct {
	app   *fiber.App
	fx    Fixtures
	scans *cache.Cache
	log   *zap.Logger
	// Latency delays every API response; used to exercise busy states.
	latency time.Duration
}

type Option func(*Server)

func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

func New(fx Fixtures, opts ...Option) *Server {
	s := &Server{
		fx:    fx,
		scans: cache.New(scanTTL, 10*time.Minute),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "secdeck-mock",
		BodyLimit:             4 * 1024 * 1024,
		DisableStartupMessage: true,
	})
	s.app.Use(recover.New())
	s.app.Use(s.requestLog)
	s.registerRoutes(s.app.Group("/api"))
	return s
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	s.log.Info("mock server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error { return s.app.Shutdown() }

func (s *Server) registerRoutes(api fiber.Router) {
	api.Get("/search", s.search)
	api.Get("/filings", s.filings)
	api.Post("/scan", s.scan)
	api.Post("/generate", s.generate)
	api.Get("/industries", s.industries)
	api.Post("/landscape/generate", s.generateLandscape)
	api.Get("/value-chains", s.valueChains)
	api.Post("/value-chain/generate", s.generateValueChain)
}

func (s *Server) requestLog(c *fiber.Ctx) error {
	start := time.Now()
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
	err := c.Next()
	s.log.Info("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return err
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func (s *Server) search(c *fiber.Ctx) error {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	results := []secapi.Company{}
	if q == "" {
		return c.JSON(results)
	}
	for _, co := range s.fx.Companies {
		if strings.Contains(strings.ToLower(co.Name), q) || strings.Contains(strings.ToLower(co.Ticker), q) {
			results = append(results, co)
			if len(results) == maxSearchResults {
				break
			}
		}
	}
	return c.JSON(results)
}

func (s *Server) filings(c *fiber.Ctx) error {
	cik := strings.TrimSpace(c.Query("cik"))
	if cik == "" {
		return fail(c, fiber.StatusBadRequest, "CIK is required")
	}
	if _, ok := s.fx.company(cik); !ok {
		return fail(c, fiber.StatusNotFound, fmt.Sprintf("Unknown CIK %s", cik))
	}
	filings := s.fx.Filings[cik]
	if filings == nil {
		filings = []secapi.Filing{}
	}
	return c.JSON(filings)
}

type scanEntry struct {
	cik    string
	tables map[string]struct{}
}

func (s *Server) scan(c *fiber.Ctx) error {
	var req scanPayload
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "No data provided")
	}
	if invalidField(&req) != "" {
		return fail(c, fiber.StatusBadRequest, "CIK and at least one filing are required")
	}
	entry := scanEntry{cik: req.CIK, tables: map[string]struct{}{}}
	tables := []secapi.Table{}
	for _, f := range req.Filings {
		for i, title := range s.fx.TableTitles[f.Accession] {
			id := fmt.Sprintf("%s:%d", f.Accession, i)
			entry.tables[id] = struct{}{}
			tables = append(tables, secapi.Table{
				ID:         id,
				Title:      title,
				Rows:       8 + 3*i,
				Cols:       4,
				FilingType: f.Type,
				FilingDate: f.Date,
				Accession:  f.Accession,
			})
		}
	}
	scanID := uuid.NewString()
	s.scans.SetDefault(scanID, entry)
	s.log.Debug("scan cached", zap.String("scan_id", scanID), zap.Int("tables", len(tables)))
	return c.JSON(secapi.ScanResult{ScanID: scanID, Tables: tables})
}

func (s *Server) generate(c *fiber.Ctx) error {
	var req generatePayload
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "No data provided")
	}
	switch invalidField(&req) {
	case "":
	case "ScanID":
		return fail(c, fiber.StatusBadRequest, "Scan expired or unknown, please scan again")
	default:
		return fail(c, fiber.StatusBadRequest, "CIK and at least one filing are required")
	}
	cached, ok := s.scans.Get(req.ScanID)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Scan expired or unknown, please scan again")
	}
	entry := cached.(scanEntry)
	if entry.cik != req.CIK {
		return fail(c, fiber.StatusBadRequest, "Scan belongs to a different company")
	}
	for _, id := range req.SelectedTables {
		if _, ok := entry.tables[id]; !ok {
			return fail(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown table %s", id))
		}
	}
	sheets := "multi-sheet"
	if req.SingleSheet {
		sheets = "single-sheet"
	}
	body := fmt.Sprintf("workbook %s (%s)\nfilings=%d tables=%s\n%s colours=%s/%s\n",
		req.Ticker, req.CompanyName, len(req.Filings), strings.Join(req.SelectedTables, ","),
		sheets, req.BrandColors.Primary, req.BrandColors.Accent)
	return s.attach(c, workflow.FilingsFilename(secapi.Company{CIK: req.CIK, Ticker: req.Ticker}), xlsxType, body)
}

func (s *Server) industries(c *fiber.Ctx) error {
	industries := make([]secapi.Industry, 0, len(s.fx.Industries))
	for _, ind := range s.fx.Industries {
		ind.CompanyCount = ind.TotalCompanies()
		industries = append(industries, ind)
	}
	return c.JSON(fiber.Map{"industries": industries})
}

func (s *Server) generateLandscape(c *fiber.Ctx) error {
	var req landscapePayload
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "No data provided")
	}
	ind, ok := s.fx.industry(req.IndustryID)
	if !ok {
		return fail(c, fiber.StatusNotFound, fmt.Sprintf("Unknown industry %s", req.IndustryID))
	}
	if invalidField(&req) != "" {
		return fail(c, fiber.StatusBadRequest, "Select at least one sub-industry")
	}
	known := map[string]int{}
	for _, sub := range ind.SubIndustries {
		known[sub.ID] = len(sub.Companies)
	}
	companies := 0
	for _, id := range req.SubIndustryIDs {
		n, ok := known[id]
		if !ok {
			return fail(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown sub-industry %s", id))
		}
		companies += n
	}
	body := fmt.Sprintf("landscape %s\nsub_industries=%s companies=%d\n", ind.Name, strings.Join(req.SubIndustryIDs, ","), companies)
	return s.attach(c, workflow.SanitizeName(ind.Name)+"_Landscape.pptx", pptxType, body)
}

func (s *Server) valueChains(c *fiber.Ctx) error {
	chains := s.fx.ValueChains
	if chains == nil {
		chains = []secapi.ValueChain{}
	}
	return c.JSON(fiber.Map{"value_chains": chains})
}

func (s *Server) generateValueChain(c *fiber.Ctx) error {
	var req valueChainPayload
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "No data provided")
	}
	vc, ok := s.fx.valueChain(req.ChainID)
	if !ok {
		return fail(c, fiber.StatusNotFound, fmt.Sprintf("Unknown value chain %s", req.ChainID))
	}
	if invalidField(&req) != "" {
		return fail(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid scope %q", req.Scope))
	}
	body := fmt.Sprintf("value chain %s\nscope=%s\n", vc.Name, req.Scope)
	return s.attach(c, workflow.SanitizeName(vc.Name)+"_Value_Chain.pptx", pptxType, body)
}

func (s *Server) attach(c *fiber.Ctx, filename, contentType, body string) error {
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, contentType)
	return c.SendString(body)
}
