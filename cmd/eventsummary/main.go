// Command eventsummary aggregates the secdeck telemetry NDJSON file into a
// JSON report: event counts per tool, scan and generate success rates and the
// most frequent search queries.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

type event struct {
	SessionID string            `json:"session_id"`
	Timestamp time.Time         `json:"timestamp"`
	Tool      string            `json:"tool"`
	Event     string            `json:"event"`
	Fields    map[string]string `json:"fields"`
}

type rate struct {
	Succeeded int     `json:"succeeded"`
	Failed    int     `json:"failed"`
	Ratio     float64 `json:"ratio"`
}

type toolSummary struct {
	Events   map[string]int `json:"events"`
	Scan     *rate          `json:"scan,omitempty"`
	Generate *rate          `json:"generate,omitempty"`
}

type queryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

type report struct {
	Source     string                  `json:"source"`
	Events     int                     `json:"events"`
	Malformed  int                     `json:"malformed"`
	Sessions   int                     `json:"sessions"`
	StartTime  time.Time               `json:"start_time"`
	EndTime    time.Time               `json:"end_time"`
	Tools      map[string]*toolSummary `json:"tools"`
	TopQueries []queryCount            `json:"top_queries"`
	Errors     map[string]int          `json:"errors,omitempty"`
}

func main() {
	var inputPath string
	var outputPath string
	var top int
	flag.StringVar(&inputPath, "in", "", "telemetry NDJSON path (required)")
	flag.StringVar(&outputPath, "out", "", "output JSON path (optional, defaults to stdout)")
	flag.IntVar(&top, "top", 10, "number of search queries to list")
	flag.Parse()

	if inputPath == "" {
		exit(errors.New("missing --in path"))
	}
	if top < 0 {
		exit(errors.New("--top must not be negative"))
	}

	file, err := os.Open(inputPath)
	if err != nil {
		exit(err)
	}
	defer file.Close()

	rep, err := summarize(file, top)
	if err != nil {
		exit(fmt.Errorf("parse telemetry: %w", err))
	}
	rep.Source = inputPath

	encoded, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		exit(fmt.Errorf("encode report: %w", err))
	}
	if outputPath == "" {
		fmt.Println(string(encoded))
		return
	}
	if err := os.WriteFile(outputPath, append(encoded, '\n'), 0o644); err != nil {
		exit(fmt.Errorf("write output: %w", err))
	}
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "eventsummary: %v\n", err)
	os.Exit(1)
}

func summarize(r io.Reader, top int) (*report, error) {
	rep := &report{Tools: map[string]*toolSummary{}, Errors: map[string]int{}}
	sessions := map[string]struct{}{}
	queries := map[string]int{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev event
		if err := json.Unmarshal([]byte(line), &ev); err != nil || ev.Event == "" {
			rep.Malformed++
			continue
		}
		rep.Events++
		if ev.SessionID != "" {
			sessions[ev.SessionID] = struct{}{}
		}
		if !ev.Timestamp.IsZero() {
			if rep.StartTime.IsZero() || ev.Timestamp.Before(rep.StartTime) {
				rep.StartTime = ev.Timestamp
			}
			if ev.Timestamp.After(rep.EndTime) {
				rep.EndTime = ev.Timestamp
			}
		}

		tool := ev.Tool
		if tool == "" {
			tool = "unknown"
		}
		ts, ok := rep.Tools[tool]
		if !ok {
			ts = &toolSummary{Events: map[string]int{}}
			rep.Tools[tool] = ts
		}
		ts.Events[ev.Event]++

		switch ev.Event {
		case "scan_succeeded":
			ts.Scan = bump(ts.Scan, true)
		case "scan_failed":
			ts.Scan = bump(ts.Scan, false)
		case "generate_succeeded":
			ts.Generate = bump(ts.Generate, true)
		case "generate_failed":
			ts.Generate = bump(ts.Generate, false)
		case "search":
			if q := strings.ToLower(strings.TrimSpace(ev.Fields["query"])); q != "" {
				queries[q]++
			}
		}
		if msg := strings.TrimSpace(ev.Fields["error"]); msg != "" {
			rep.Errors[msg]++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	rep.Sessions = len(sessions)
	for _, ts := range rep.Tools {
		finishRate(ts.Scan)
		finishRate(ts.Generate)
	}
	rep.TopQueries = topQueries(queries, top)
	if len(rep.Errors) == 0 {
		rep.Errors = nil
	}
	return rep, nil
}

func bump(r *rate, ok bool) *rate {
	if r == nil {
		r = &rate{}
	}
	if ok {
		r.Succeeded++
	} else {
		r.Failed++
	}
	return r
}

func finishRate(r *rate) {
	if r == nil {
		return
	}
	if total := r.Succeeded + r.Failed; total > 0 {
		r.Ratio = float64(r.Succeeded) / float64(total)
	}
}

func topQueries(counts map[string]int, limit int) []queryCount {
	out := make([]queryCount, 0, len(counts))
	for q, n := range counts {
		out = append(out, queryCount{Query: q, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
