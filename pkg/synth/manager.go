// Package synth turns file specs into files on disk.
//
// A Manager runs a batch in two phases. Preparation is sequential and does
// no file I/O: each target path is expanded, its format plugin resolved and
// its values validated, then targets that collide are rejected. Synthesis
// runs the prepared specs on a bounded worker pool: read and parse the
// existing file, merge, serialize, and replace the file atomically when the
// bytes differ.
//
// A failing spec never affects its siblings. Results come back in input
// order.
package synth

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/filesystem"
	"github.com/arthur-debert/confsynth/pkg/formats"
	"github.com/arthur-debert/confsynth/pkg/formats/builtin"
	"github.com/arthur-debert/confsynth/pkg/logging"
	"github.com/arthur-debert/confsynth/pkg/merge"
	"github.com/arthur-debert/confsynth/pkg/metrics"
	"github.com/arthur-debert/confsynth/pkg/paths"
	"github.com/arthur-debert/confsynth/pkg/schema"
	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Default permissions for created files and directories.
const (
	DefaultFileMode os.FileMode = 0644
	DefaultDirMode  os.FileMode = 0755
)

// Options configure a Manager. The zero value writes to the real
// filesystem with the built-in formats and an empty environment.
type Options struct {
	FS       afero.Fs
	Registry *formats.Registry
	Env      paths.Environment

	// Workers bounds concurrent synthesis. Zero means one per CPU.
	Workers int

	// DryRun computes results without creating or writing anything. Specs
	// that would be written report StatusPlanned.
	DryRun bool
	// Diff attaches a unified diff to results that change a file.
	Diff bool

	FileMode os.FileMode
	DirMode  os.FileMode

	// Metrics, when set, records every result.
	Metrics *metrics.Collector
}

// Manager synthesizes batches of file specs.
type Manager struct {
	opts   Options
	store  *filesystem.Store
	logger zerolog.Logger
}

// NewManager creates a Manager, filling unset options with defaults.
func NewManager(opts Options) *Manager {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.Registry == nil {
		opts.Registry = builtin.NewRegistry()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.FileMode == 0 {
		opts.FileMode = DefaultFileMode
	}
	if opts.DirMode == 0 {
		opts.DirMode = DefaultDirMode
	}
	return &Manager{
		opts:   opts,
		store:  filesystem.New(opts.FS),
		logger: logging.GetLogger("synth"),
	}
}

// task is a spec that passed preparation.
type task struct {
	index     int
	spec      types.FileSpec
	path      string
	plugin    formats.Plugin
	effective types.EffectiveValues
}

// Synthesize processes specs and returns one result per spec, in input
// order. Cancelling ctx fails the specs that have not started yet.
func (m *Manager) Synthesize(ctx context.Context, specs []types.FileSpec) []types.Result {
	runID := uuid.NewString()
	logger := m.logger.With().Str("run", runID).Logger()
	done := logging.LogOperationStart(logger, "synthesize")
	defer done()

	results := make([]types.Result, len(specs))
	tasks := make([]*task, len(specs))
	for i, spec := range specs {
		results[i] = types.Result{Index: i, Target: spec.Target}
		t, err := m.prepare(i, spec)
		if err != nil {
			m.fail(&results[i], err)
			continue
		}
		results[i].Path = t.path
		results[i].Format = t.plugin.Name()
		tasks[i] = t
	}

	m.rejectDuplicates(tasks, results)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)
	for i, t := range tasks {
		if t == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				m.fail(&results[i], errors.Wrap(err, errors.ErrInternal, "synthesis cancelled"))
				return nil
			}
			m.synthesize(t, &results[i])
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		m.log(logger, r)
		if m.opts.Metrics != nil {
			m.opts.Metrics.Observe(r)
		}
	}
	if m.opts.Metrics != nil {
		m.opts.Metrics.RunCompleted(time.Now())
	}
	return results
}

// prepare runs every check that needs no file I/O.
func (m *Manager) prepare(index int, spec types.FileSpec) (*task, error) {
	path, err := paths.Resolve(spec.Target, m.opts.Env)
	if err != nil {
		return nil, err
	}

	plugin, err := m.opts.Registry.Resolve(spec.Format, path)
	if err != nil {
		return nil, errors.Annotate(err, errors.ErrConfig, errors.DetailPath, path)
	}

	effective, err := schema.Validate(spec.Schema, spec.Values)
	if err != nil {
		return nil, errors.Annotate(err, errors.ErrValidation, errors.DetailPath, path)
	}

	return &task{
		index:     index,
		spec:      spec,
		path:      path,
		plugin:    plugin,
		effective: effective,
	}, nil
}

// rejectDuplicates fails every spec whose resolved path is shared with
// another spec of the batch.
func (m *Manager) rejectDuplicates(tasks []*task, results []types.Result) {
	byPath := make(map[string][]int)
	for i, t := range tasks {
		if t != nil {
			byPath[t.path] = append(byPath[t.path], i)
		}
	}
	for path, indices := range byPath {
		if len(indices) < 2 {
			continue
		}
		sort.Ints(indices)
		for _, i := range indices {
			err := errors.Newf(errors.ErrConfig, "duplicate target: %d specs resolve to %s", len(indices), path).
				WithDetail(errors.DetailPath, path).
				WithDetail("specs", indices)
			m.fail(&results[i], err)
			tasks[i] = nil
		}
	}
}

func (m *Manager) synthesize(t *task, result *types.Result) {
	if !m.opts.DryRun {
		if err := m.store.EnsureDir(filepath.Dir(t.path), m.opts.DirMode); err != nil {
			m.fail(result, errors.Wrapf(err, errors.ErrIO, "cannot create directory for %s", t.path))
			return
		}
	}

	existing, err := m.store.ReadExisting(t.path)
	if err != nil {
		m.fail(result, errors.Wrapf(err, errors.ErrIO, "cannot read %s", t.path))
		return
	}

	var state *types.ExistingFileState
	var current []byte
	if existing != nil {
		current = existing.Data
		state, err = t.plugin.Read(existing.Data)
		if err != nil {
			m.fail(result, errors.Annotate(err, errors.ErrParse, errors.DetailPath, t.path))
			return
		}
	}

	doc := merge.Merge(state, t.effective, t.spec.Schema.Order())
	out, err := t.plugin.Write(doc)
	if err != nil {
		m.fail(result, errors.Annotate(err, errors.ErrValidation, errors.DetailPath, t.path))
		return
	}
	result.Bytes = len(out)

	if existing != nil && bytes.Equal(current, out) {
		result.Status = types.StatusUnchanged
		return
	}
	if m.opts.Diff {
		result.Diff = unifiedDiff(t.path, current, out)
	}
	if m.opts.DryRun {
		result.Status = types.StatusPlanned
		return
	}

	mode := m.opts.FileMode
	if existing != nil {
		mode = existing.Mode
	}
	if err := m.store.WriteAtomic(t.path, out, mode); err != nil {
		m.fail(result, errors.Wrapf(err, errors.ErrIO, "cannot write %s", t.path))
		return
	}
	result.Status = types.StatusWritten
}

func (m *Manager) fail(result *types.Result, err error) {
	err = errors.Annotate(err, errors.ErrInternal, errors.DetailTarget, result.Target)
	if result.Path != "" {
		err = errors.Annotate(err, errors.ErrInternal, errors.DetailPath, result.Path)
	}
	result.Status = types.StatusFailed
	result.Err = err
}

func (m *Manager) log(logger zerolog.Logger, r types.Result) {
	switch r.Status {
	case types.StatusFailed:
		logger.Warn().
			Int("index", r.Index).
			Str("target", r.Target).
			Str("code", string(errors.GetErrorCode(r.Err))).
			Err(r.Err).
			Msg("File spec failed")
	case types.StatusWritten:
		logger.Info().
			Str("path", r.Path).
			Str("format", r.Format).
			Int("bytes", r.Bytes).
			Msg("Wrote config file")
	default:
		logger.Debug().
			Str("path", r.Path).
			Str("format", r.Format).
			Str("status", string(r.Status)).
			Msg("File spec processed")
	}
}
