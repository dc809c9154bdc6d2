// Package pipeline runs the record builder over an ordered batch of
// photos and owns the temporary files the run creates.
package pipeline

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/d-dboss/Worksite-Appendix-Creator/internal/builder"
	"github.com/d-dboss/Worksite-Appendix-Creator/internal/log"
	"github.com/d-dboss/Worksite-Appendix-Creator/internal/metadata"
	"github.com/d-dboss/Worksite-Appendix-Creator/pkg/types"
)

// Options configure one pipeline instance.
type Options struct {
	// Jobs is the number of photos processed concurrently. Zero or
	// negative means sequential.
	Jobs int
	// TempDir receives normalized copies. Empty means the OS default.
	TempDir string
	// ExifToolTimeout bounds one exiftool query per photo.
	ExifToolTimeout time.Duration
	// Sources overrides the default adapter set; used by tests.
	Sources []metadata.Source
	// Logger is optional.
	Logger *log.Logger
}

type Pipeline struct {
	builder          *builder.Builder
	sources          []metadata.Source
	jobs             int
	logger           *log.Logger
	progressCallback ProgressCallback
}

func New(opts Options) *Pipeline {
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	sources := opts.Sources
	if sources == nil {
		sources = []metadata.Source{
			metadata.NewExifToolSource(opts.ExifToolTimeout),
			metadata.NewEmbeddedSource(),
			metadata.NewSpotlightSource(),
			metadata.NewSidecarSource(),
		}
	}

	return &Pipeline{
		builder: builder.New(sources, tempDir),
		sources: sources,
		jobs:    jobs,
		logger:  opts.Logger,
	}
}

func (p *Pipeline) SetProgressCallback(cb ProgressCallback) {
	p.progressCallback = cb
}

// Process builds one record per input path. The result is 1:1 with the
// input and in the same order; a photo that fails entirely still yields a
// record carrying its error. Photos are processed by a bounded worker
// pool writing into an index-addressed slice, so ordering never depends
// on completion order, and all workers finish before Process returns.
func (p *Pipeline) Process(ctx context.Context, paths []string) []types.PhotoRecord {
	records := make([]types.PhotoRecord, len(paths))
	if len(paths) == 0 {
		return records
	}

	indexChan := make(chan int, len(paths))
	var completed sync.WaitGroup
	var done int
	var doneMu sync.Mutex

	for w := 0; w < p.jobs; w++ {
		completed.Add(1)
		go func() {
			defer completed.Done()
			for i := range indexChan {
				start := time.Now()
				records[i] = p.builder.Build(ctx, paths[i])

				if p.logger != nil {
					p.logger.LogRecord(records[i], time.Since(start))
				}

				doneMu.Lock()
				done++
				current := done
				doneMu.Unlock()

				if p.progressCallback != nil {
					p.progressCallback(ProgressUpdate{
						Type:     "photo",
						Current:  current,
						Total:    len(paths),
						Filename: records[i].DisplayName,
						Caption:  records[i].Caption,
						Failed:   records[i].ProcessingError != "",
					})
				}
			}
		}()
	}

	for i := range paths {
		indexChan <- i
	}
	close(indexChan)
	completed.Wait()

	return records
}

// Cleanup removes every normalized copy the records point at. Files that
// are already gone are fine; the call is idempotent and safe after
// partial failure.
func (p *Pipeline) Cleanup(records []types.PhotoRecord) {
	for _, rec := range records {
		if rec.NormalizedCopyPath == "" {
			continue
		}
		if err := os.Remove(rec.NormalizedCopyPath); err != nil && !os.IsNotExist(err) {
			if p.logger != nil {
				p.logger.Error("failed to remove temp file "+rec.NormalizedCopyPath, err)
			}
		}
	}
}

// Close releases adapter resources (the stay-open exiftool process).
func (p *Pipeline) Close() error {
	var firstErr error
	for _, src := range p.sources {
		if closer, ok := src.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Summarize folds a record list into run statistics.
func Summarize(records []types.PhotoRecord, start time.Time) *types.RunSummary {
	summary := &types.RunSummary{StartTime: start}
	for _, rec := range records {
		summary.Tally(rec)
	}
	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(start)
	return summary
}
