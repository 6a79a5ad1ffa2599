// cmd/weekly-summary/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/fba-weekly-summary/internal/cache"
	"github.com/andresuchdata/fba-weekly-summary/internal/config"
	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
	"github.com/andresuchdata/fba-weekly-summary/internal/reference"
	"github.com/andresuchdata/fba-weekly-summary/internal/report"
	"github.com/andresuchdata/fba-weekly-summary/internal/repository/postgres"
	"github.com/andresuchdata/fba-weekly-summary/internal/saleswindow"
	"github.com/andresuchdata/fba-weekly-summary/internal/sink"
	"github.com/andresuchdata/fba-weekly-summary/internal/source"
	"github.com/andresuchdata/fba-weekly-summary/internal/source/amazon"
	"github.com/andresuchdata/fba-weekly-summary/internal/source/sellercloud"
	"github.com/andresuchdata/fba-weekly-summary/internal/source/sheets"
	"github.com/andresuchdata/fba-weekly-summary/internal/storage"
	"github.com/andresuchdata/fba-weekly-summary/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "weekly-summary",
		Usage: "Build the weekly FBA inventory summary report",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Execute one batch run and write the report artifacts",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "date",
						Usage: "Anchor date (YYYY-MM-DD), defaults to yesterday",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: xlsx, csv, or both",
						Value: "xlsx",
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "Directory for report artifacts (defaults to APP_OUTPUT_DIR)",
					},
					&cli.BoolFlag{
						Name:  "skip-upload",
						Usage: "Skip uploading artifacts to object storage",
					},
					&cli.BoolFlag{
						Name:  "skip-db",
						Usage: "Skip recording the run in the database",
					},
				},
				Action: runReport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("weekly-summary failed")
	}
}

// staticMappingSource replays mapping rows that were already fetched, so the
// sheet is read once even though both the sales source and the runner need it.
type staticMappingSource struct {
	rows []reference.MappingRow
}

func (s *staticMappingSource) Fetch(context.Context) ([]reference.MappingRow, error) {
	return s.rows, nil
}

// multiSink fans one run's output to several sinks in order.
type multiSink struct {
	sinks []source.ReportSink
}

func (m *multiSink) Write(ctx context.Context, rows []domain.WeeklySummaryRow, rep domain.DiscrepancyReport) error {
	for _, s := range m.sinks {
		if err := s.Write(ctx, rows, rep); err != nil {
			return err
		}
	}
	return nil
}

func runReport(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	ctx := c.Context

	// The anchor is resolved exactly once and threaded everywhere: artifact
	// names, the run record and the runner must all agree on the date.
	anchor := saleswindow.AnchorDate(time.Now())
	if raw := c.String("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", raw, err)
		}
		anchor = saleswindow.DateOnly(parsed)
	}

	sheetsService, err := sheets.NewService(ctx, cfg.Sheets.CredentialsJSON)
	if err != nil {
		return fmt.Errorf("init sheets service: %w", err)
	}

	// The mapping sheet serves double duty: reference rows for the resolver
	// and the ASIN to SKU index the sales source needs. Fetch it up front.
	mappingSource := sheets.NewMappingSheetSource(sheetsService, cfg.Sheets.SpreadsheetID, cfg.Sheets.MappingRange)
	mappings, err := mappingSource.Fetch(ctx)
	if err != nil {
		return &source.BoundaryError{Source: "reference-mapping", Err: err}
	}
	if len(mappings) == 0 {
		return &source.BoundaryError{Source: "reference-mapping"}
	}

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("report cache unavailable, continuing without")
		reportCache = cache.NewNoopReportCache()
	}

	spapiClient, err := amazon.NewClient(ctx, cfg.Amazon)
	if err != nil {
		return fmt.Errorf("init sp-api client: %w", err)
	}

	sources := report.Sources{
		Sales: amazon.NewSalesTrafficSource(
			spapiClient, reportCache, cfg.Amazon.MarketplaceID,
			reference.AsinToSKU(mappings), cfg.Amazon.MaxConcurrent,
		),
		Inventory: amazon.NewRestockSource(cfg.Amazon.RestockPath),
		Mapping:   &staticMappingSource{rows: mappings},
		Carton:    sheets.NewCartonSheetSource(sheetsService, cfg.Sheets.SpreadsheetID, cfg.Sheets.CartonRange),
	}

	// The warehouse column only shows up when SellerCloud is configured.
	if cfg.SellerCloud.Server != "" {
		scClient, err := sellercloud.NewClient(cfg.SellerCloud)
		if err != nil {
			return fmt.Errorf("init sellercloud client: %w", err)
		}
		sources.Warehouse = sellercloud.NewWarehouseInventorySource(scClient, cfg.SellerCloud.ViewID, cfg.SellerCloud.PageSize)
	}

	outputDir := cfg.App.OutputDir
	if dir := c.String("output-dir"); dir != "" {
		outputDir = dir
	}

	reportSink, artifacts, err := buildSink(c.String("format"), outputDir, anchor)
	if err != nil {
		return err
	}

	var runs *postgres.RunRepository
	var runID int64
	if cfg.Database.URL != "" && !c.Bool("skip-db") {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		runs = postgres.NewRunRepository(db)
		if err := runs.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	runner := report.NewRunner(sources, reportSink, cfg.App.InboundTolerance)

	if runs != nil {
		runID, err = runs.InsertRun(ctx, anchor)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("could not record run start, continuing")
			runs = nil
		}
	}

	result, err := runner.Run(ctx, anchor)
	if err != nil {
		if runs != nil {
			if failErr := runs.FailRun(ctx, runID, err); failErr != nil {
				logger.Log.Error().Err(failErr).Msg("could not record run failure")
			}
		}
		return err
	}

	if runs != nil {
		if err := runs.CompleteRun(ctx, runID, len(result.Rows), result.Report); err != nil {
			logger.Log.Error().Err(err).Msg("could not record run completion")
		}
	}

	if cfg.Storage.Enabled && !c.Bool("skip-upload") {
		store, err := storage.NewMinioClient(ctx, cfg.Storage)
		if err != nil {
			logger.Log.Error().Err(err).Msg("object storage unavailable, artifacts kept local only")
		} else if err := uploadArtifacts(ctx, store, anchor, artifacts); err != nil {
			logger.Log.Error().Err(err).Msg("artifact upload failed")
		}
	}

	logger.Log.Info().
		Str("anchor", result.AnchorDate.Format("2006-01-02")).
		Int("rows", len(result.Rows)).
		Int("discrepancies", len(result.Report.Discrepancies)).
		Int("issues", len(result.Report.Issues)).
		Msg("weekly summary complete")
	return nil
}

// buildSink assembles the sink for the requested format and returns the
// artifact paths it will produce. The caller resolves the anchor before
// calling; no date arithmetic happens here.
func buildSink(format, outputDir string, anchor time.Time) (source.ReportSink, []string, error) {
	date := anchor.Format("20060102")
	xlsxPath := filepath.Join(outputDir, fmt.Sprintf("weekly_summary_%s.xlsx", date))

	switch format {
	case "xlsx":
		return sink.NewExcelSink(xlsxPath), []string{xlsxPath}, nil
	case "csv":
		return sink.NewCSVSink(outputDir), csvArtifacts(outputDir, anchor), nil
	case "both":
		return &multiSink{sinks: []source.ReportSink{
			sink.NewExcelSink(xlsxPath),
			sink.NewCSVSink(outputDir),
		}}, append([]string{xlsxPath}, csvArtifacts(outputDir, anchor)...), nil
	default:
		return nil, nil, fmt.Errorf("unknown format %q (want xlsx, csv, or both)", format)
	}
}

func csvArtifacts(outputDir string, anchor time.Time) []string {
	date := anchor.Format("20060102")
	return []string{
		filepath.Join(outputDir, fmt.Sprintf("weekly_summary_%s.csv", date)),
		filepath.Join(outputDir, fmt.Sprintf("discrepancies_%s.csv", date)),
		filepath.Join(outputDir, fmt.Sprintf("issues_%s.csv", date)),
	}
}

// uploadArtifacts pushes the run's files under reports/YYYY-MM-DD/. Keys
// already present under the prefix are skipped, so re-running a day never
// re-uploads what a previous attempt finished.
func uploadArtifacts(ctx context.Context, store storage.ObjectStorage, anchor time.Time, paths []string) error {
	prefix := fmt.Sprintf("reports/%s", anchor.Format("2006-01-02"))

	existing, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return err
	}
	uploaded := make(map[string]struct{}, len(existing))
	for _, obj := range existing {
		uploaded[obj.Key] = struct{}{}
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		key := fmt.Sprintf("%s/%s", prefix, filepath.Base(path))
		if _, ok := uploaded[key]; ok {
			logger.Log.Debug().Str("key", key).Msg("artifact already uploaded, skipping")
			continue
		}
		if err := store.UploadFile(ctx, key, path); err != nil {
			return err
		}
	}
	return nil
}
