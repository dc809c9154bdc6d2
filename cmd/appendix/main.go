package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/d-dboss/Worksite-Appendix-Creator/internal/config"
	"github.com/d-dboss/Worksite-Appendix-Creator/internal/document"
	"github.com/d-dboss/Worksite-Appendix-Creator/internal/log"
	"github.com/d-dboss/Worksite-Appendix-Creator/internal/pipeline"
	"github.com/d-dboss/Worksite-Appendix-Creator/internal/render"
	"github.com/d-dboss/Worksite-Appendix-Creator/internal/scanner"
)

var (
	appVersion = "0.1.0"

	cfgFile       string
	source        string
	output        string
	imagesPerPage int
	includeMaps   bool
	jobs          int
	logFile       string
	logJSON       bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "appendix",
	Short: "Build a photo appendix document with captions, locations and headings",
	Long: `Appendix scans a folder of photos, resolves each photo's caption, GPS
position and compass heading from its metadata, normalizes HEIC images,
and assembles a paginated PDF appendix.`,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Scan photos and generate the appendix document",
	RunE:  runGenerate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appVersion)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(versionCmd)

	generateCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	generateCmd.Flags().StringVarP(&source, "source", "s", "", "photo directory")
	generateCmd.Flags().StringVarP(&output, "output", "o", "", "output document path")
	generateCmd.Flags().IntVarP(&imagesPerPage, "images-per-page", "n", 0, "photos per page: 1, 2 or 4")
	generateCmd.Flags().BoolVarP(&includeMaps, "maps", "m", false, "render location maps and compass roses")
	generateCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "number of concurrent workers (0=auto)")
	generateCmd.Flags().StringVar(&logFile, "log-file", "", "log file path")
	generateCmd.Flags().BoolVar(&logJSON, "log-json", false, "output JSON logs")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if source != "" {
		cfg.Source = source
	}
	if output != "" {
		cfg.Output = output
	}
	if imagesPerPage > 0 {
		cfg.ImagesPerPage = imagesPerPage
	}
	if includeMaps {
		cfg.IncludeMaps = true
	}
	if jobs > 0 {
		cfg.Jobs = jobs
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if logJSON {
		cfg.LogJSON = true
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := log.New(cfg.LogFile, cfg.LogJSON, true)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logger.Close()

	ctx := context.Background()
	start := time.Now()

	paths, err := scanner.New(nil).Scan(cfg.Source)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no photos found in %s", cfg.Source)
	}
	logger.Info(fmt.Sprintf("found %d photos in %s", len(paths), cfg.Source))

	p := pipeline.New(pipeline.Options{
		Jobs:            cfg.Jobs,
		TempDir:         cfg.TempDir,
		ExifToolTimeout: time.Duration(cfg.ExifToolTimeoutSec) * time.Second,
		Logger:          logger,
	})
	defer p.Close()

	records := p.Process(ctx, paths)
	defer p.Cleanup(records)

	entries := make([]document.Entry, len(records))
	var rendered []string
	defer func() { render.CleanupFiles(rendered) }()

	if cfg.IncludeMaps {
		maps := render.NewMapRenderer(cfg.TempDir, cfg.MapZoom, cfg.MapSizePx)
		compass := render.NewCompassRenderer(cfg.TempDir, cfg.MapSizePx/3)
		for i, rec := range records {
			entries[i].Record = rec
			if rec.HasLocation() {
				if path, err := maps.Render(ctx, *rec.Latitude, *rec.Longitude); err == nil {
					entries[i].MapPath = path
					rendered = append(rendered, path)
				}
			}
			if rec.Heading != nil {
				if path, err := compass.Render(*rec.Heading); err == nil {
					entries[i].CompassPath = path
					rendered = append(rendered, path)
				}
			}
		}
	} else {
		for i, rec := range records {
			entries[i].Record = rec
		}
	}

	if err := document.Create(entries, cfg.Output, cfg.ImagesPerPage); err != nil {
		return err
	}

	logger.Summary(*pipeline.Summarize(records, start))
	fmt.Printf("Wrote %s\n", cfg.Output)
	return nil
}
