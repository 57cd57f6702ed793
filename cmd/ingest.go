package cmd

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/fraudsight/fraudsight/internal/db"
	"github.com/fraudsight/fraudsight/internal/ingest"
	"github.com/fraudsight/fraudsight/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load transaction CSVs and index fraud reports",
	Long: `Loads transaction CSV exports into the SQLite database and chunks
report documents into the vector index. Both sources come from the glob
patterns in the config file.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Bool("skip-dataset", false, "skip the transaction CSV load")
	ingestCmd.Flags().Bool("skip-reports", false, "skip the report indexing")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	skipDataset, _ := cmd.Flags().GetBool("skip-dataset")
	skipReports, _ := cmd.Flags().GetBool("skip-reports")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reporter := progress.NewReporter()

	if !skipDataset {
		database, err := db.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		var paths []string
		for _, pattern := range cfg.Ingest.DatasetGlobs {
			matches, err := doublestar.FilepathGlob(pattern)
			if err != nil {
				return fmt.Errorf("bad dataset glob %q: %w", pattern, err)
			}
			paths = append(paths, matches...)
		}
		if len(paths) == 0 {
			return fmt.Errorf("no dataset files match %v", cfg.Ingest.DatasetGlobs)
		}

		for _, path := range paths {
			if _, err := ingest.LoadDataset(ctx, database, path, reporter, &logger); err != nil {
				return fmt.Errorf("loading %s: %w", path, err)
			}
		}

		stats, err := database.Validate(ctx)
		if err != nil {
			return fmt.Errorf("validating database: %w", err)
		}
		fmt.Printf("Loaded %d rows (%d fraudulent, %s to %s)\n",
			stats.TotalRows, stats.FraudCount, stats.MinDate, stats.MaxDate)
	}

	if !skipReports {
		store, err := openVectorStore(ctx, cfg, false)
		if err != nil {
			return err
		}

		result, err := ingest.IngestReports(ctx, store, ingest.ReportOptions{
			Globs:        cfg.Ingest.ReportGlobs,
			Exclude:      cfg.Ingest.Exclude,
			ChunkSize:    cfg.Ingest.ChunkSize,
			ChunkOverlap: cfg.Ingest.ChunkOverlap,
		}, reporter, &logger)
		if err != nil {
			return err
		}

		if err := store.Persist(ctx, cfg.VectorDir()); err != nil {
			return fmt.Errorf("persisting vector store: %w", err)
		}
		fmt.Printf("Indexed %d chunks from %d report files (%d pages)\n",
			result.Chunks, result.Files, result.Pages)
	}

	return nil
}
