package render

import (
	"context"
	"time"

	"github.com/matzehuels/treewalk/pkg/diagram"
	"github.com/matzehuels/treewalk/pkg/observability"
	"github.com/matzehuels/treewalk/pkg/tree"
)

// Engine draws trees onto a surface.
type Engine struct {
	surface *diagram.Surface
	opts    Options
}

// New returns an engine drawing onto surface.
func New(surface *diagram.Surface, opts ...Option) *Engine {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.ValidateAndSetDefaults()
	return &Engine{surface: surface, opts: o}
}

// Surface returns the surface the engine draws on.
func (e *Engine) Surface() *diagram.Surface { return e.surface }

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Render replaces the diagram with a drawing of nodes.
//
// On error the surface is left untouched: malformed input yields a
// MALFORMED_TREE error, and a cancelled ctx yields ctx.Err().
func (e *Engine) Render(ctx context.Context, nodes tree.NodeList) error {
	return e.RenderThen(ctx, nodes, nil)
}

// RenderThen is [Engine.Render] with a callback that runs after nodes have
// been validated and laid out, immediately before the swap. It does not run
// when the render is rejected. Shells use it to stop an animation only when
// the diagram is really about to change.
func (e *Engine) RenderThen(ctx context.Context, nodes tree.NodeList, beforeSwap func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, len(nodes))
	start := time.Now()

	sc, err := Build(nodes, e.opts)
	hooks.OnRenderComplete(ctx, len(nodes), time.Since(start), err)
	if err != nil {
		e.opts.Logger.Warn("render rejected", "nodes", len(nodes), "err", err)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if beforeSwap != nil {
		beforeSwap()
	}
	e.surface.Replace(sc)
	e.opts.Logger.Debug("rendered", "nodes", len(sc.Circles), "width", sc.Width, "height", sc.Height)
	return nil
}
