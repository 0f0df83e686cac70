package scan

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/autobrr/hldup/pkg/expression"
	"github.com/autobrr/hldup/pkg/fingerprint"
	"github.com/autobrr/hldup/pkg/hashcache"
	"github.com/autobrr/hldup/pkg/logger"
)

/* Structs */

type Options struct {
	// Ignore skips files matching any expression before they are read.
	Ignore []expression.CompiledExpression
	// Workers bounds how many roots are scanned at once. Zero means all.
	Workers int
}

// Stats counts what happened to the entries of one or more roots.
type Stats struct {
	Files   uint64
	Bytes   uint64
	Skipped uint64
	Ignored uint64
	Errors  uint64
}

func (s *Stats) add(other *Stats) {
	s.Files += other.Files
	s.Bytes += other.Bytes
	s.Skipped += other.Skipped
	s.Ignored += other.Ignored
	s.Errors += other.Errors
}

type Scanner struct {
	fs   afero.Fs
	opts Options
	log  *logrus.Entry
}

/* Public */

func New(fsys afero.Fs, opts Options) *Scanner {
	return &Scanner{
		fs:   fsys,
		opts: opts,
		log:  logger.GetLogger("scan"),
	}
}

// Scan builds one cache per root concurrently and folds them into one. A root
// that cannot be walked is logged and contributes nothing.
func (s *Scanner) Scan(ctx context.Context, roots []string) (*hashcache.Cache, Stats, error) {
	caches := make([]*hashcache.Cache, len(roots))
	stats := make([]Stats, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	if s.opts.Workers > 0 {
		g.SetLimit(s.opts.Workers)
	}

	for i, root := range roots {
		g.Go(func() error {
			cache, st, err := s.ScanRoot(gctx, root)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.log.WithError(err).Errorf("Failed scanning root: %q", root)
				cache = hashcache.New()
			}

			caches[i] = cache
			stats[i] = st
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	var total Stats
	for i := range stats {
		total.add(&stats[i])
	}

	return hashcache.Fold(caches...), total, nil
}

// ScanRoot fingerprints every regular, non-empty, non-ignored file beneath
// root into a fresh cache.
func (s *Scanner) ScanRoot(ctx context.Context, root string) (*hashcache.Cache, Stats, error) {
	canonical, err := Canonicalize(root)
	if err != nil {
		return nil, Stats{}, err
	}

	log := s.log.WithField("root", canonical)
	log.Debugf("Building hash cache for root: %q", canonical)

	var (
		cache = hashcache.New()
		start = time.Now()

		files, size, skipped, ignored, failed atomic.Uint64
	)

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, canonical, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			log.WithError(err).Errorf("Found error walking directory tree at %q", path)
			failed.Add(1)
			return nil
		}

		if d.IsDir() {
			log.Tracef("Found directory %q; skipping", path)
			return nil
		}

		if !d.Type().IsRegular() {
			log.Tracef("Skipping non-regular file: %q", path)
			skipped.Add(1)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			log.WithError(err).Errorf("Failed to get file info for %q", path)
			failed.Add(1)
			return nil
		}

		if info.Size() == 0 {
			log.Tracef("Skipping empty file: %q", path)
			skipped.Add(1)
			return nil
		}

		if len(s.opts.Ignore) > 0 {
			match, reason, err := expression.CheckFileSingleMatchWithReason(
				expression.NewFile(path, info.Size(), info.ModTime()), s.opts.Ignore)
			if err != nil {
				log.WithError(err).Errorf("Failed evaluating ignore expressions for %q", path)
				failed.Add(1)
				return nil
			}
			if match {
				log.Tracef("Ignoring %q (matched %s)", path, reason)
				ignored.Add(1)
				return nil
			}
		}

		log.Tracef("Calculating hash for file %q", path)
		fp, err := fingerprint.New(s.fs, path)
		if err != nil {
			log.WithError(err).Errorf("Error getting file hash for %q", path)
			failed.Add(1)
			return nil
		}

		cache.Insert(path, fp)
		files.Add(1)
		size.Add(fp.Size)
		return nil
	})
	if err != nil {
		return nil, Stats{}, errors.Wrapf(err, "walk %q", canonical)
	}

	st := Stats{
		Files:   files.Load(),
		Bytes:   size.Load(),
		Skipped: skipped.Load(),
		Ignored: ignored.Load(),
		Errors:  failed.Load(),
	}

	log.Debugf("Hashed %d files in %s (%d fingerprints)", st.Files, time.Since(start).Truncate(time.Millisecond),
		cache.Len())

	return cache, st, nil
}

// Canonicalize returns the absolute, symlink-free form of root, so that
// overlapping roots yield identical paths for the same file.
func Canonicalize(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrapf(err, "resolve absolute path of %q", root)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Wrapf(err, "resolve symlinks of %q", abs)
	}

	return resolved, nil
}
