package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/fraudsight/fraudsight/internal/progress"
	"github.com/fraudsight/fraudsight/internal/vectordb"
)

// ReportOptions controls report discovery and chunking.
type ReportOptions struct {
	Globs        []string // doublestar patterns selecting report files
	Exclude      []string // patterns removing matches again
	ChunkSize    int      // target chunk length in characters
	ChunkOverlap int      // characters repeated between adjacent chunks
}

// ReportResult summarizes one report ingestion run.
type ReportResult struct {
	Files  int
	Pages  int
	Chunks int
}

// IngestReports discovers report text files, chunks them page by page, and
// adds the chunks to the vector store. Reports are plain text or markdown;
// form feeds mark page boundaries in text extracted from PDFs, and a file
// without them counts as a single page.
func IngestReports(ctx context.Context, store vectordb.VectorStore, opts ReportOptions, reporter progress.Reporter, logger *zerolog.Logger) (*ReportResult, error) {
	files, err := discoverReports(opts.Globs, opts.Exclude)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no report files match %v", opts.Globs)
	}

	reporter.Start(len(files), "Indexing reports")
	defer reporter.Finish()

	result := &ReportResult{}
	for _, path := range files {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		reporter.Describe(filepath.Base(path))

		docs, pages, err := chunkReportFile(path, opts)
		if err != nil {
			return nil, err
		}
		if len(docs) > 0 {
			if err := store.AddDocuments(ctx, docs); err != nil {
				return nil, fmt.Errorf("indexing %s: %w", path, err)
			}
		}

		result.Files++
		result.Pages += pages
		result.Chunks += len(docs)
		reporter.Add(1)
	}

	logger.Info().
		Int("files", result.Files).
		Int("pages", result.Pages).
		Int("chunks", result.Chunks).
		Msg("reports indexed")
	return result, nil
}

// discoverReports expands the glob patterns and filters out excluded paths.
// The result is deduplicated and keeps glob expansion order.
func discoverReports(globs, exclude []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string

	for _, pattern := range globs {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", pattern, err)
		}
	match:
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			for _, ex := range exclude {
				if ok, _ := doublestar.PathMatch(ex, filepath.ToSlash(m)); ok {
					continue match
				}
			}
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	return files, nil
}

// chunkReportFile reads one report and produces its store documents.
func chunkReportFile(path string, opts ReportOptions) ([]vectordb.Document, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", path, err)
	}

	source := filepath.Base(path)
	pages := strings.Split(string(raw), "\f")
	now := time.Now()

	var docs []vectordb.Document
	chunkIndex := 0
	for pageIdx, pageText := range pages {
		for _, chunk := range SplitText(pageText, opts.ChunkSize, opts.ChunkOverlap) {
			docs = append(docs, vectordb.Document{
				ID:      fmt.Sprintf("%s:%d:%d", source, pageIdx+1, chunkIndex),
				Content: chunk,
				Metadata: vectordb.PassageMetadata{
					Source:     source,
					Page:       pageIdx + 1,
					Section:    sectionHeading(chunk),
					ChunkIndex: chunkIndex,
					IngestedAt: now,
				},
			})
			chunkIndex++
		}
	}

	return docs, len(pages), nil
}

// sectionHeading returns the first markdown heading in the chunk, if any.
func sectionHeading(chunk string) string {
	for _, line := range strings.Split(chunk, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return ""
}
