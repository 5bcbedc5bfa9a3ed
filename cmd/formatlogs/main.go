// Command formatlogs renders the secdeck JSON log (or the mock server's file
// log) as readable blocks, one per entry.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
)

type rawEvent struct {
	line    int
	fields  map[string]any
	rawText string
}

type attribute struct {
	label string
	value string
}

type formattedEvent struct {
	title      string
	category   string
	level      string
	attributes []attribute
}

var levelRank = map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3, "DPANIC": 4, "PANIC": 5, "FATAL": 6}

// Keys the encoder always writes; everything else is rendered as an attribute.
var reservedKeys = map[string]bool{"timestamp": true, "level": true, "message": true, "logger": true, "caller": true}

func main() {
	var inputPath string
	var outputPath string
	var minLevel string
	var colorMode string
	flag.StringVar(&inputPath, "in", "", "input log file path (required)")
	flag.StringVar(&outputPath, "out", "", "output file path (optional, defaults to stdout)")
	flag.StringVar(&minLevel, "level", "debug", "lowest level to include: debug, info, warn or error")
	flag.StringVar(&colorMode, "color", "auto", "colour level headers: auto, always or never")
	flag.Parse()

	if inputPath == "" {
		exitWithError(errors.New("missing --in path"))
	}
	floor, ok := levelRank[strings.ToUpper(minLevel)]
	if !ok {
		exitWithError(fmt.Errorf("unknown level %q", minLevel))
	}

	switch colorMode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto":
		// Files never get escape codes.
		if outputPath != "" {
			color.NoColor = true
		}
	default:
		exitWithError(fmt.Errorf("unknown color mode %q", colorMode))
	}

	file, err := os.Open(inputPath)
	if err != nil {
		exitWithError(err)
	}
	defer file.Close()

	events, err := parseLog(file)
	if err != nil {
		exitWithError(fmt.Errorf("parse log: %w", err))
	}
	rendered := renderEvents(events, inputPath, floor)

	if outputPath == "" {
		fmt.Println(rendered)
		return
	}
	if err := os.WriteFile(outputPath, []byte(rendered+"\n"), 0o644); err != nil {
		exitWithError(fmt.Errorf("write output: %w", err))
	}
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "formatlogs: %v\n", err)
	os.Exit(1)
}

func parseLog(r io.Reader) ([]rawEvent, error) {
	var events []rawEvent
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		evt := rawEvent{line: lineNo}
		if err := json.Unmarshal([]byte(text), &evt.fields); err != nil {
			evt.fields = nil
			evt.rawText = text
		}
		events = append(events, evt)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func renderEvents(events []rawEvent, sourcePath string, minLevel int) string {
	var out []string
	for _, raw := range events {
		evt := formatEvent(raw)
		if rank, ok := levelRank[evt.level]; ok && rank < minLevel {
			continue
		}
		out = append(out, renderEvent(evt, sourcePath, raw.line)...)
	}
	return strings.Join(out, "\n")
}

func formatEvent(raw rawEvent) formattedEvent {
	if raw.fields == nil {
		return formattedEvent{
			title:      "Log Entry",
			category:   "log.raw",
			attributes: []attribute{{label: "text", value: raw.rawText}},
		}
	}
	str := func(key string) string {
		if v, ok := raw.fields[key].(string); ok {
			return v
		}
		return ""
	}
	evt := formattedEvent{
		title: str("message"),
		level: strings.ToUpper(str("level")),
	}
	if evt.title == "" {
		evt.title = "Log Entry"
	}
	evt.category = categorize(str("logger"), raw.fields)
	evt.attributes = append(evt.attributes,
		attribute{label: "timestamp", value: str("timestamp")},
		attribute{label: "level", value: evt.level},
	)
	if logger := str("logger"); logger != "" {
		evt.attributes = append(evt.attributes, attribute{label: "logger", value: logger})
	}

	keys := make([]string, 0, len(raw.fields))
	for k := range raw.fields {
		if !reservedKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		evt.attributes = append(evt.attributes, attribute{label: k, value: stringify(raw.fields[k])})
	}
	return evt
}

// categorize groups entries by the component that wrote them.
func categorize(logger string, fields map[string]any) string {
	switch {
	case logger == "api" || fields["endpoint"] != nil:
		return "api"
	case fields["path"] != nil && fields["bytes"] != nil:
		return "artifact"
	case fields["tool"] != nil:
		return "workflow"
	case fields["status"] != nil && fields["method"] != nil:
		return "http"
	case logger != "":
		return logger
	default:
		return "app"
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}

func renderEvent(evt formattedEvent, sourcePath string, line int) []string {
	var out []string
	out = append(out, "------------------")

	location := sourcePath
	if rel, err := filepath.Rel(".", sourcePath); err == nil {
		location = rel
	}
	header := fmt.Sprintf("%s · %s (%s:%d)", evt.title, evt.category, location, line)
	out = append(out, levelColor(evt.level).Sprint(header))
	out = append(out, "------------------")
	for _, attr := range evt.attributes {
		if attr.value == "" {
			continue
		}
		if !strings.Contains(attr.value, "\n") {
			out = append(out, fmt.Sprintf("%s: %s", attr.label, attr.value))
			continue
		}
		out = append(out, attr.label+":")
		for _, v := range strings.Split(strings.TrimRight(attr.value, "\n"), "\n") {
			out = append(out, "  "+v)
		}
	}
	return out
}

func levelColor(level string) *color.Color {
	switch level {
	case "DEBUG":
		return color.New(color.Faint)
	case "WARN":
		return color.New(color.FgYellow, color.Bold)
	case "ERROR", "DPANIC", "PANIC", "FATAL":
		return color.New(color.FgRed, color.Bold)
	case "INFO":
		return color.New(color.FgCyan)
	default:
		return color.New(color.Reset)
	}
}
