package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bekirdag/secdeck/internal/secapi"
)

// Saver persists a generated document and returns where it ended up.
type Saver interface {
	Save(name string, body []byte) (string, error)
}

// DirSaver writes into a download directory, replacing any file of the same name.
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(name string, body []byte) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid download name %q", name)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, "."+name+".*.part")
	if err != nil {
		return "", fmt.Errorf("create download file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write download: %w", err)
	}
	dest := filepath.Join(s.Dir, name)
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("move download into place: %w", err)
	}
	return dest, nil
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// SanitizeName replaces every non-alphanumeric character with "_".
func SanitizeName(s string) string {
	return nonAlphanumeric.ReplaceAllString(s, "_")
}

// FilingsFilename is "{ticker}_SEC_Filings.xlsx", using the CIK when the
// company has no ticker.
func FilingsFilename(company secapi.Company) string {
	short := strings.TrimSpace(company.Ticker)
	if short == "" {
		short = strings.TrimSpace(company.CIK)
	}
	return SanitizeName(short) + "_SEC_Filings.xlsx"
}

func LandscapeFilename(art secapi.Artifact, industryName string) string {
	if art.Filename != "" {
		return art.Filename
	}
	return SanitizeName(industryName) + "_Landscape.pptx"
}

func ValueChainFilename(art secapi.Artifact, chainName string) string {
	if art.Filename != "" {
		return art.Filename
	}
	return SanitizeName(chainName) + "_Value_Chain.pptx"
}
