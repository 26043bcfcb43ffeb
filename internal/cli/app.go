package cli

import (
	"context"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treewalk/pkg/animate"
	"github.com/matzehuels/treewalk/pkg/cache"
	"github.com/matzehuels/treewalk/pkg/client"
	"github.com/matzehuels/treewalk/pkg/config"
	"github.com/matzehuels/treewalk/pkg/diagram"
	"github.com/matzehuels/treewalk/pkg/errors"
	"github.com/matzehuels/treewalk/pkg/events"
	"github.com/matzehuels/treewalk/pkg/render"
	"github.com/matzehuels/treewalk/pkg/tree"
)

// =============================================================================
// App - wiring shared by every command that draws a tree
// =============================================================================

// app owns the surface, the engine and animator drawing on it, the tree
// source, and the optional cache and event publisher.
type app struct {
	cfg     config.Config
	logger  *log.Logger
	offline bool

	cache  cache.Cache
	client *client.Client // nil when the tree comes from a file
	source client.Source

	surface  *diagram.Surface
	engine   *render.Engine
	animator *animate.Animator

	pub         events.Publisher
	stopForward func()

	nodes tree.NodeList // last tree loaded
}

// newApp builds an app from the effective configuration.
func (c *CLI) newApp(ctx context.Context) (*app, error) {
	cfg := c.cfg
	a := &app{cfg: cfg, logger: c.Logger, offline: c.offline}

	palette, ok := animate.PaletteByName(cfg.Animation.Palette)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown palette %q", cfg.Animation.Palette)
	}

	a.surface = diagram.NewSurface()
	renderOpts := []render.Option{
		render.WithFrame(cfg.Render.Width, cfg.Render.Height),
		render.WithRadius(cfg.Render.Radius),
		render.WithLogger(c.Logger),
	}
	if cfg.Render.NilLeaves {
		renderOpts = append(renderOpts, render.WithNilLeaves())
	}
	a.engine = render.New(a.surface, renderOpts...)
	a.animator = animate.New(a.surface,
		animate.WithInterval(cfg.Animation.Interval.Duration),
		animate.WithPalette(palette),
		animate.WithLogger(c.Logger),
	)

	if c.file != "" {
		a.cache = cache.NewNullCache()
		a.source = client.FileSource{Path: c.file}
	} else {
		cc, err := cache.Open(ctx, cache.Options{
			Backend:  cfg.Cache.Backend,
			Dir:      cfg.Cache.Dir,
			RedisURL: cfg.Cache.RedisURL,
		})
		if err != nil {
			c.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "err", err)
			cc = cache.NewNullCache()
		}
		a.cache = cc
		cl, err := client.New(cfg.Server,
			client.WithCache(cache.Tracked(cc, "tree"), cache.NewDefaultKeyer(), cfg.Cache.TTL.Duration),
			client.WithLogger(c.Logger),
		)
		if err != nil {
			_ = cc.Close()
			return nil, err
		}
		a.client = cl
		a.source = cl
	}

	a.pub = &events.NoopPublisher{}
	if url := cfg.Events.NATSURL; url != "" {
		pub, err := events.NewNATSPublisher(url)
		if err != nil {
			c.Logger.Warn("event publishing disabled", "err", err)
		} else {
			a.pub = pub
			c.Logger.Debug("publishing diagram events", "nats", url)
		}
	}
	a.stopForward = events.Start(a.surface, a.pub, c.Logger)

	return a, nil
}

// Close stops the animation and releases the cache and the publisher.
func (a *app) Close() {
	a.animator.Cancel()
	a.stopForward()
	if err := a.pub.Close(); err != nil {
		a.logger.Debug("close publisher", "err", err)
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Debug("close cache", "err", err)
	}
}

// loadTree returns the current tree. A transport failure with a cached tree
// available logs a warning and returns the cached tree with stale set, but
// only while nothing is drawn yet: once a diagram is shown the failure is
// returned and the diagram stays.
func (a *app) loadTree(ctx context.Context) (nodes tree.NodeList, stale bool, err error) {
	switch {
	case a.client == nil:
		nodes, err = a.source.FetchTree(ctx)
	case a.offline:
		var ok bool
		nodes, ok, err = a.client.CachedTree(ctx)
		if err == nil && !ok {
			err = errors.New(errors.ErrCodeTransport, "offline and no cached tree for %s", a.client.Server())
		}
		stale = err == nil
	default:
		nodes, err = a.client.FetchTreeOrCached(ctx)
		if err != nil && len(nodes) > 0 && a.surface.Empty() {
			a.logger.Warn("showing cached tree", "err", errors.UserMessage(err))
			stale, err = true, nil
		}
	}
	if err != nil {
		return nil, false, err
	}
	return nodes, stale, nil
}

// draw loads the tree and renders it. On failure the surface keeps the
// previous diagram.
func (a *app) draw(ctx context.Context) (int, bool, error) {
	nodes, stale, err := a.loadTree(ctx)
	if err != nil {
		return 0, false, err
	}
	if err := a.engine.RenderThen(ctx, nodes, a.animator.Cancel); err != nil {
		return 0, false, err
	}
	a.nodes = nodes
	return len(nodes), stale, nil
}

// drawWithSpinner is draw with a progress spinner on stderr.
func (a *app) drawWithSpinner(ctx context.Context) (int, bool, error) {
	sp := startSpinner(ctx, os.Stderr, "Fetching tree...")
	defer sp.stop()
	return a.draw(ctx)
}

// searchPath validates raw and resolves its search path. Offline, the path
// is computed locally from the last tree loaded.
func (a *app) searchPath(ctx context.Context, raw string) (float64, []tree.NodeID, error) {
	value, err := client.ParseSearchValue(raw)
	if err != nil {
		return 0, nil, err
	}

	var path []tree.NodeID
	switch {
	case a.client == nil:
		path, err = a.source.SearchPath(ctx, value)
	case a.offline:
		path, err = client.DescendPath(a.nodes, value)
	default:
		path, err = a.client.SearchPathOrCached(ctx, value)
		if err != nil && path != nil {
			a.logger.Warn("using cached search path", "err", errors.UserMessage(err))
			err = nil
		}
	}
	if err != nil {
		return value, nil, err
	}
	return value, path, nil
}
