package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dcam-project/dcam-go/pkg/log"
)

// buildFilter assembles a log.Filter from flag values.
func buildFilter(sessionID, serial, category, timeStart, timeEnd string) (log.Filter, error) {
	filter := log.Filter{SessionID: sessionID, Serial: serial}

	if category != "" {
		c, err := parseCategory(category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}
	if timeStart != "" {
		t, err := time.Parse(time.RFC3339, timeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start: %w", err)
		}
		filter.TimeStart = &t
	}
	if timeEnd != "" {
		t, err := time.Parse(time.RFC3339, timeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end: %w", err)
		}
		filter.TimeEnd = &t
	}
	return filter, nil
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.CategoryTransport, nil
	case "capability":
		return log.CategoryCapability, nil
	case "control":
		return log.CategoryControl, nil
	case "policy":
		return log.CategoryPolicy, nil
	case "metadata":
		return log.CategoryMetadata, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

func runViewFile(path string, filter log.Filter, w io.Writer) error {
	r, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(w, formatEvent(event))
	}
}

// formatEvent renders one event as a single line.
func formatEvent(e log.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %-10s",
		e.Timestamp.Format("15:04:05.000"), shortID(e.SessionID), e.Category)

	switch {
	case e.Command != nil:
		fmt.Fprintf(&b, " %s req=%dB resp=%dB", e.Command.Mnemonic,
			e.Command.RequestLen, e.Command.ResponseLen)
		if e.Command.Failed {
			b.WriteString(" FAILED")
		}
	case e.Capability != nil:
		fmt.Fprintf(&b, " fw=%s caps=%s", e.Capability.FirmwareVersion, e.Capability.MaskText)
	case e.Control != nil:
		fmt.Fprintf(&b, " %s (%s)", e.Control.Name, e.Control.Kind)
	case e.Policy != nil:
		fmt.Fprintf(&b, " %s refused: %s", e.Policy.Control, e.Policy.Reason)
	case e.Error != nil:
		fmt.Fprintf(&b, " %s: %s", e.Error.Context, e.Error.Message)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runExportFile(path, output string) error {
	r, err := log.NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	w := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := enc.Encode(exportRecord(event)); err != nil {
			return err
		}
	}
}

// exportRecord flattens an event for JSONL output.
func exportRecord(e log.Event) map[string]any {
	rec := map[string]any{
		"timestamp":  e.Timestamp.Format(time.RFC3339Nano),
		"session_id": e.SessionID,
		"category":   e.Category.String(),
	}
	if e.Serial != "" {
		rec["serial"] = e.Serial
	}
	switch {
	case e.Command != nil:
		rec["command"] = e.Command
	case e.Capability != nil:
		rec["capability"] = e.Capability
	case e.Control != nil:
		rec["control"] = e.Control
	case e.Policy != nil:
		rec["policy"] = e.Policy
	case e.Error != nil:
		rec["error"] = e.Error
	}
	return rec
}

func runFilterFile(path, output string, filter log.Filter) error {
	r, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return err
	}
	defer r.Close()

	out, err := log.NewFileLogger(output)
	if err != nil {
		return err
	}
	defer out.Close()

	count := 0
	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		out.Log(event)
		count++
	}
	fmt.Printf("Wrote %d events to %s\n", count, output)
	return nil
}

func runStatsFile(path string, w io.Writer) error {
	r, err := log.NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	var (
		total      int
		first      time.Time
		last       time.Time
		categories = make(map[string]int)
		opcodes    = make(map[string]int)
		failures   int
		sessions   = make(map[string]bool)
	)

	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		total++
		if first.IsZero() || event.Timestamp.Before(first) {
			first = event.Timestamp
		}
		if event.Timestamp.After(last) {
			last = event.Timestamp
		}
		categories[event.Category.String()]++
		sessions[event.SessionID] = true
		if event.Command != nil {
			opcodes[event.Command.Mnemonic]++
			if event.Command.Failed {
				failures++
			}
		}
	}

	fmt.Fprintf(w, "Events:   %d\n", total)
	fmt.Fprintf(w, "Sessions: %d\n", len(sessions))
	if total > 0 {
		fmt.Fprintf(w, "Span:     %s .. %s (%s)\n",
			first.Format(time.RFC3339), last.Format(time.RFC3339),
			last.Sub(first).Round(time.Millisecond))
	}

	fmt.Fprintln(w, "\nBy category:")
	for _, name := range sortedKeys(categories) {
		fmt.Fprintf(w, "  %-12s %d\n", name, categories[name])
	}

	if len(opcodes) > 0 {
		fmt.Fprintln(w, "\nCommands:")
		for _, name := range sortedKeys(opcodes) {
			fmt.Fprintf(w, "  %-16s %d\n", name, opcodes[name])
		}
		fmt.Fprintf(w, "  failed round-trips: %d\n", failures)
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
