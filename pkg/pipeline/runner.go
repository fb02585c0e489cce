package pipeline

import (
	"context"
	goerrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/drawtf/pkg/cache"
	"github.com/matzehuels/drawtf/pkg/component"
	"github.com/matzehuels/drawtf/pkg/diagram"
	"github.com/matzehuels/drawtf/pkg/dot"
	"github.com/matzehuels/drawtf/pkg/errors"
	"github.com/matzehuels/drawtf/pkg/grouping"
	"github.com/matzehuels/drawtf/pkg/observability"
	"github.com/matzehuels/drawtf/pkg/registry"
	"github.com/matzehuels/drawtf/pkg/state"
)

// Runner executes the pipeline with artifact caching.
//
// A Runner holds no per-run state; one Runner can serve concurrent
// Execute calls as long as its Cache is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching and a nil
// logger uses the default logger.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs ingest → group → draw → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.ConfigPath != "" {
		cfg, err := state.LoadConfig(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		opts.ApplyConfig(cfg)
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	platform, _ := FindPlatform(opts.Platform)
	reg := platform.Registry()

	result := &Result{Options: opts}

	start := time.Now()
	cs, err := stage(ctx, observability.StageIngest, func() ([]*component.Component, int, error) {
		cs, err := r.Ingest(opts, reg)
		return cs, len(cs), err
	})
	if err != nil {
		return nil, err
	}
	result.Components = cs
	result.Stats.Components = len(cs)
	result.Stats.IngestTime = time.Since(start)
	opts.Logger.Info("ingested components", "count", len(cs), "duration", result.Stats.IngestTime)

	start = time.Now()
	forest, err := stage(ctx, observability.StageGroup, func() ([]*component.Component, int, error) {
		f, err := grouping.New(reg, platform.Plan(), opts.Logger).Nest(cs)
		return f, len(f), err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "group components")
	}
	result.Forest = forest
	result.Stats.Roots = len(forest)
	result.Stats.GroupTime = time.Since(start)
	opts.Logger.Debug("grouped components", "roots", len(forest), "duration", result.Stats.GroupTime)

	start = time.Now()
	g, err := stage(ctx, observability.StageDraw, func() (*drawn, int, error) {
		d, err := r.Draw(reg, opts, cs, forest)
		if err != nil {
			return nil, 0, err
		}
		return d, len(d.graph.Nodes()), nil
	})
	if err != nil {
		return nil, err
	}
	result.DOT = g.graph.String()
	result.Report = g.report
	result.Stats.Nodes = len(g.graph.Nodes())
	result.Stats.Edges = len(g.graph.Edges())
	result.Stats.DrawTime = time.Since(start)
	opts.Logger.Info("drew diagram",
		"nodes", result.Stats.Nodes,
		"edges", result.Stats.Edges,
		"duration", result.Stats.DrawTime)

	start = time.Now()
	artifacts, err := stage(ctx, observability.StageRender, func() (map[string][]byte, int, error) {
		a, hits, err := r.Render(ctx, result.DOT, opts.Formats)
		result.CacheInfo.Hits = hits
		return a, len(a), err
	})
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", len(result.CacheInfo.Hits),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// stage reports fn to the pipeline hooks and stops early on cancellation.
func stage[T any](ctx context.Context, name string, fn func() (T, int, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name)
	start := time.Now()
	v, n, err := fn()
	hooks.OnStageComplete(ctx, name, n, time.Since(start), err)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// Ingest builds the flat component list: state components in state order,
// then config components.
func (r *Runner) Ingest(opts Options, reg *registry.Registry) ([]*component.Component, error) {
	logger := opts.Logger
	var (
		f   *state.File
		err error
	)
	switch {
	case len(opts.State) > 0:
		f, err = state.Parse(opts.State)
	case opts.StatePath != "":
		logger.Debug("reading state", "path", opts.StatePath)
		f, err = state.Read(opts.StatePath)
	}
	if err != nil {
		return nil, err
	}
	cs := f.Components(reg, logger)
	return append(cs, state.BuildComponents(opts.Components, reg, logger)...), nil
}

type drawn struct {
	graph  *dot.Graph
	report *diagram.Report
}

// Draw renders the forest, links and merged tags into DOT.
func (r *Runner) Draw(reg *registry.Registry, opts Options, cs, forest []*component.Component) (*drawn, error) {
	renderer := diagram.NewRenderer(reg, opts.Logger)
	g, _, report, err := renderer.Draw(diagram.Diagram{
		Name:      opts.Name,
		Direction: opts.Direction,
		Forest:    forest,
		Tags:      diagram.MergeTags(cs),
		Links:     opts.Links,
	})
	if goerrors.Is(err, diagram.ErrMalformedLink) {
		return nil, errors.Wrap(errors.ErrCodeInvalidLink, err, "draw diagram")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "draw diagram")
	}
	return &drawn{graph: g, report: report}, nil
}

// Render produces one artifact per format, serving cached artifacts when
// available. It returns the formats that were cache hits.
func (r *Runner) Render(ctx context.Context, src string, formats []string) (map[string][]byte, []string, error) {
	artifacts := make(map[string][]byte, len(formats))
	var hits []string
	hooks := observability.Cache()

	for _, format := range formats {
		if format == dot.FormatDOT {
			artifacts[format] = []byte(src)
			continue
		}
		key := cache.ArtifactKey(format, src)
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			hooks.OnCacheHit(ctx, format)
			artifacts[format] = data
			hits = append(hits, format)
			continue
		} else if err != nil {
			r.Logger.Warn("cache read failed", "format", format, "error", err)
		}
		hooks.OnCacheMiss(ctx, format)

		data, err := dot.Render(ctx, src, format)
		if err != nil {
			return nil, nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		hooks.OnCacheSet(ctx, format, len(data))
	}
	return artifacts, hits, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
