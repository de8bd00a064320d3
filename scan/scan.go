package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/vfind/query"
	"github.com/lepinkainen/vfind/video"
)

// DefaultTimeout bounds classification plus probing for a single file. A
// hanging external tool counts as a per-file failure, never stalls the scan.
const DefaultTimeout = 30 * time.Second

// Scanner walks a directory tree, classifies candidate files, probes the
// videos and evaluates the query against each record. Prober and Classifier
// are injected so the pipeline can run against fakes in tests.
type Scanner struct {
	Prober     video.Prober
	Classifier video.Classifier
	Log        *zap.Logger
	Workers    int           // probe workers, 0 = all CPUs
	Timeout    time.Duration // per-file budget, 0 = DefaultTimeout
	Progress   bool          // render a progress bar on stderr
}

// Result summarizes one completed scan. Match order is unspecified.
type Result struct {
	Matches []string // paths of videos the query accepted
	Files   int      // regular files seen by the walk
	Videos  int      // files classified as video
	Skipped int      // files skipped due to per-file failures

	// SkipErrors accumulates the per-file failures behind Skipped.
	SkipErrors *multierror.Error
}

// Run scans root once. A missing or non-directory root is a fatal error
// before any traversal; everything after that degrades per file. The scan
// holds no state between runs, so calling Run again restarts from scratch.
func (s *Scanner) Run(ctx context.Context, root string, q *query.Query) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	res := &Result{}
	files, err := s.collect(root, res)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	res.Files = len(files)

	s.probeAll(ctx, files, q, res)
	return res, nil
}

// collect walks the tree and gathers every regular file. Unreadable files
// and subdirectories are reported and skipped; only a failure at the root
// itself aborts.
func (s *Scanner) collect(root string, res *Result) ([]string, error) {
	var files []string
	log := s.logger()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			log.Warn("skipping unreadable path", zap.String("path", path), zap.Error(walkErr))
			res.Skipped++
			res.SkipErrors = multierror.Append(res.SkipErrors, fmt.Errorf("%s: %w", path, walkErr))
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// probeAll runs the classify/probe/evaluate stage over a bounded worker
// pool. Every file is independent, so results only meet at the collector.
func (s *Scanner) probeAll(ctx context.Context, files []string, q *query.Query, res *Result) {
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log := s.logger()

	var bar *progressbar.ProgressBar
	if s.Progress {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("probing"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for _, path := range files {
		path := path
		g.Go(func() error {
			isVideo, matched, err := s.checkFile(ctx, path, q, timeout)
			if bar != nil {
				_ = bar.Add(1)
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				if isVideo {
					res.Videos++
				}
				log.Warn("skipping file", zap.String("path", path), zap.Error(err))
				res.Skipped++
				res.SkipErrors = multierror.Append(res.SkipErrors, fmt.Errorf("%s: %w", path, err))
			case isVideo:
				res.Videos++
				if matched {
					res.Matches = append(res.Matches, path)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if bar != nil {
		_ = bar.Finish()
	}
}

// checkFile classifies and probes one file under its own timeout, then
// evaluates the query. Non-video files are never probed.
func (s *Scanner) checkFile(ctx context.Context, path string, q *query.Query, timeout time.Duration) (isVideo, matched bool, err error) {
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	isVideo, err = s.Classifier.IsVideo(fctx, path)
	if err != nil {
		return false, false, fmt.Errorf("classify: %w", err)
	}
	if !isVideo {
		return false, false, nil
	}

	md, err := s.Prober.Probe(fctx, path)
	if err != nil {
		return true, false, fmt.Errorf("probe: %w", err)
	}
	return true, q.Evaluate(md), nil
}

func (s *Scanner) logger() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}
