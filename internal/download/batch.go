package download

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/tanq16/slicer/internal/output"
	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/target"
	"github.com/tanq16/slicer/internal/utils"
)

// Entry is one object to download. FilePath may be empty.
type Entry struct {
	URL      string `yaml:"link"`
	FilePath string `yaml:"op"`
}

// ReadEntries parses batch input. Line input holds "URL [FILE_PATH]" per
// line, skipping blanks and # comments; YAML input is a list of {link, op}.
func ReadEntries(r io.Reader, yamlInput bool) ([]Entry, error) {
	if yamlInput {
		var entries []Entry
		if err := yaml.NewDecoder(r).Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("error parsing YAML input: %w", err)
		}
		for i, e := range entries {
			if strings.TrimSpace(e.URL) == "" {
				return nil, fmt.Errorf("entry %d: missing link", i+1)
			}
		}
		return entries, nil
	}

	var entries []Entry
	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch len(fields) {
		case 1:
			entries = append(entries, Entry{URL: fields[0]})
		case 2:
			entries = append(entries, Entry{URL: fields[0], FilePath: fields[1]})
		default:
			return nil, fmt.Errorf("line %d: expected URL [FILE_PATH], got %d fields", lineNo, len(fields))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	return entries, nil
}

// FactoryResolver returns the store factory for a URL protocol.
type FactoryResolver func(protocol string) (store.Factory, error)

type BatchResult struct {
	Entry  Entry
	Report *Report
	Err    error
}

// RunBatch downloads entries one after another. A failed entry is recorded
// and the batch moves on; the returned error joins every entry failure.
func RunBatch(ctx context.Context, cfg utils.DownloadConfig, entries []Entry, resolve FactoryResolver, rep output.Reporter) ([]BatchResult, error) {
	results := make([]BatchResult, len(entries))
	var errs []error
	for i, entry := range entries {
		results[i].Entry = entry
		report, err := runEntry(ctx, cfg, entry, resolve, rep)
		results[i].Report, results[i].Err = report, err
		if err != nil {
			log.Error().Str("op", "download/batch").Msgf("error downloading %s: %v", entry.URL, err)
			errs = append(errs, fmt.Errorf("%s: %w", entry.URL, err))
		}
	}
	if len(errs) > 0 {
		return results, fmt.Errorf("%d of %d downloads failed: %w", len(errs), len(entries), errors.Join(errs...))
	}
	return results, nil
}

func runEntry(ctx context.Context, cfg utils.DownloadConfig, entry Entry, resolve FactoryResolver, rep output.Reporter) (*Report, error) {
	t, err := target.Parse(entry.URL, entry.FilePath)
	if err != nil {
		return nil, err
	}
	factory, err := resolve(t.Protocol)
	if err != nil {
		return nil, err
	}
	return Run(ctx, cfg, t, factory, rep)
}
