// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Stevedore Contributors

// Package loader loads plugin archives asynchronously on a single worker.
//
// All per-archive loads run strictly sequentially in submission order.
// Submission never blocks the caller; completion is observable only through
// the returned Handle. Internal failures are logged and swallowed, never
// returned: a resolved handle cannot distinguish a clean load from a logged
// failure.
package loader

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stevedore/stevedore/internal/archive"
	"github.com/stevedore/stevedore/internal/ids"
	"github.com/stevedore/stevedore/internal/observability"
	"github.com/stevedore/stevedore/internal/registry"
	"github.com/stevedore/stevedore/pkg/errutil"
)

// Default suffixes for archive files and the compiled entries inside them.
const (
	DefaultArchiveSuffix = ".jar"
	DefaultEntrySuffix   = ".class"
)

// LoadContext is the isolated namespace one archive's entries initialize
// into. The default implementation is registry.Context layered over the
// process-wide base namespace.
type LoadContext interface {
	Initialize(name string) error
}

// ContextFactory creates the isolated context for one archive load.
type ContextFactory func() LoadContext

type task struct {
	id     ulid.ULID
	path   string
	handle *Handle
}

// Loader loads plugin archives on a single dedicated worker goroutine.
//
// A Loader is single-use: LoadDir shuts it down after submitting the
// discovered archives, and a shut-down loader accepts no further
// submissions.
type Loader struct {
	archiveSuffix string
	entrySuffix   string
	newContext    ContextFactory
	filter        *Filter
	metrics       *observability.Metrics
	tracer        trace.Tracer
	logger        *slog.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	pending  []task
	shutdown bool
	done     chan struct{}
}

// Option configures the Loader.
type Option func(*Loader)

// WithArchiveSuffix sets the suffix archive files must carry.
func WithArchiveSuffix(suffix string) Option {
	return func(l *Loader) { l.archiveSuffix = suffix }
}

// WithEntrySuffix sets the suffix compiled entries must carry.
func WithEntrySuffix(suffix string) Option {
	return func(l *Loader) { l.entrySuffix = suffix }
}

// WithContextFactory sets the factory for per-archive loading contexts.
func WithContextFactory(f ContextFactory) Option {
	return func(l *Loader) { l.newContext = f }
}

// WithFilter restricts which qualified names are initialized.
func WithFilter(f *Filter) Option {
	return func(l *Loader) { l.filter = f }
}

// WithMetrics records load outcomes to the given metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New creates a loader and starts its worker goroutine.
func New(opts ...Option) *Loader {
	l := &Loader{
		archiveSuffix: DefaultArchiveSuffix,
		entrySuffix:   DefaultEntrySuffix,
		tracer:        otel.Tracer("stevedore/loader"),
		done:          make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)
	for _, opt := range opts {
		opt(l)
	}
	if l.newContext == nil {
		l.newContext = func() LoadContext {
			return registry.NewContext(registry.Base())
		}
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}

	go l.run()
	return l
}

// LoadDir submits one load task per archive file in dir, in
// directory-listing order, then shuts the loader down. Non-matching files
// and subdirectories are ignored. A listing failure is a no-op apart from
// the log line: no error is returned and the loader stays open.
//
// The loader is single-use: after LoadDir returns, no further submissions
// are accepted.
func (l *Loader) LoadDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		l.logger.Warn("cannot list plugin directory", "dir", dir, "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), l.archiveSuffix) {
			continue
		}
		l.LoadFile(filepath.Join(dir, entry.Name()))
	}

	l.Shutdown()
}

// LoadFile submits one archive load and returns its completion handle.
// The call never blocks. After Shutdown the submission is ignored: a
// warning is logged and the returned handle is already resolved.
func (l *Loader) LoadFile(path string) *Handle {
	h := newHandle(ids.NewULID())

	l.mu.Lock()
	if l.shutdown {
		l.mu.Unlock()
		l.logger.Warn("load submitted after shutdown, ignoring", "archive", path)
		close(h.done)
		return h
	}
	l.pending = append(l.pending, task{id: h.id, path: path, handle: h})
	l.cond.Signal()
	l.mu.Unlock()

	return h
}

// Shutdown stops the loader from accepting new submissions. Tasks already
// queued still run; Done is closed once the worker drains.
func (l *Loader) Shutdown() {
	l.mu.Lock()
	l.shutdown = true
	l.cond.Broadcast()
	l.mu.Unlock()
}

// Done returns a channel closed when the loader has shut down and finished
// every queued task.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// run is the single worker loop. Exactly one task executes at a time, in
// submission order.
func (l *Loader) run() {
	defer close(l.done)

	for {
		l.mu.Lock()
		for len(l.pending) == 0 && !l.shutdown {
			l.cond.Wait()
		}
		if len(l.pending) == 0 {
			l.mu.Unlock()
			return
		}
		t := l.pending[0]
		l.pending = l.pending[1:]
		l.mu.Unlock()

		l.runLoad(t)
		close(t.handle.done)
	}
}

// runLoad performs one archive load. Every failure is logged and swallowed:
// an open failure aborts this archive only, an entry failure aborts that
// entry only.
func (l *Loader) runLoad(t task) {
	ctx, span := l.tracer.Start(context.Background(), "loader.load_archive",
		trace.WithAttributes(
			attribute.String("archive.path", t.path),
			attribute.String("task.id", t.id.String()),
		))
	defer span.End()

	log := l.logger.With("task_id", t.id.String(), "archive", t.path)

	arc, err := archive.Open(t.path)
	if err != nil {
		errutil.LogError(log, "failed to open archive", err)
		l.countArchive("error")
		return
	}
	defer func() {
		if err := arc.Close(); err != nil {
			log.Warn("failed to close archive", "error", err)
		}
	}()

	if m, err := arc.Manifest(); err != nil {
		errutil.LogWarn(log, "ignoring invalid manifest", err)
	} else if m != nil {
		log.InfoContext(ctx, "archive manifest",
			"plugin", m.Name,
			"version", m.Version)
	}

	loadCtx := l.newContext()
	attempted, failed := 0, 0
	for _, entry := range arc.Entries() {
		if !strings.HasSuffix(entry, l.entrySuffix) {
			continue
		}
		name := archive.QualifiedName(entry, l.entrySuffix)
		if !l.filter.Match(name) {
			log.DebugContext(ctx, "entry excluded by filter", "symbol", name)
			l.countEntry("filtered")
			continue
		}

		attempted++
		if err := loadCtx.Initialize(name); err != nil {
			failed++
			errutil.LogError(log, "failed to initialize entry", err)
			l.countEntry("error")
			continue
		}
		l.countEntry("ok")
	}

	l.countArchive("ok")
	log.InfoContext(ctx, "archive loaded",
		"entries", attempted,
		"failed", failed)
}

func (l *Loader) countArchive(status string) {
	if l.metrics != nil {
		l.metrics.ArchiveLoads.WithLabelValues(status).Inc()
	}
}

func (l *Loader) countEntry(status string) {
	if l.metrics != nil {
		l.metrics.EntryInits.WithLabelValues(status).Inc()
	}
}
