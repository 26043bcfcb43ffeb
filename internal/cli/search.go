package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treewalk/pkg/animate"
	"github.com/matzehuels/treewalk/pkg/config"
	"github.com/matzehuels/treewalk/pkg/diagram"
	"github.com/matzehuels/treewalk/pkg/errors"
	"github.com/matzehuels/treewalk/pkg/render/sink"
)

type searchOpts struct {
	output    string
	framesDir string
	interval  time.Duration
	palette   string
	nilLeaves bool
	quiet     bool // skip the final terminal drawing
}

func (c *CLI) searchCommand() *cobra.Command {
	var opts searchOpts

	cmd := &cobra.Command{
		Use:   "search VALUE",
		Short: "Animate the search path for VALUE",
		Long: `Search renders the tree, asks the service for the path a search for VALUE
takes, and highlights one node per interval. Each step is logged; the final
diagram is printed, and written as SVG with --output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("interval") {
				c.cfg.Animation.Interval = config.Duration{Duration: opts.interval}
			}
			if cmd.Flags().Changed("palette") {
				c.cfg.Animation.Palette = opts.palette
			}
			if cmd.Flags().Changed("nil-leaves") {
				c.cfg.Render.NilLeaves = opts.nilLeaves
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			return c.runSearch(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the final diagram as SVG")
	cmd.Flags().StringVar(&opts.framesDir, "frames", "", "write one SVG per step into this directory")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "time between steps (default from config)")
	cmd.Flags().StringVar(&opts.palette, "palette", "", "highlight palette: default, restore")
	cmd.Flags().BoolVar(&opts.nilLeaves, "nil-leaves", false, "draw nil sentinel leaves")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the final diagram")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, stdout io.Writer, raw string, opts searchOpts) error {
	a, err := c.newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, stale, err := a.drawWithSpinner(ctx); err != nil {
		return err
	} else if stale {
		printWarning("Service unreachable, searching cached tree")
	}

	value, path, err := a.searchPath(ctx, raw)
	if err != nil {
		return err
	}
	printInfo("Searching %s %s %d steps", StyleNumber.Render(raw), iconArrow, len(path))

	ch, unsubscribe := a.surface.Subscribe(len(path)*2 + 2)
	defer unsubscribe()

	prog := newProgress(c.Logger)
	sess := a.animator.AnimateContext(ctx, path)
	frame, step := 0, 0
	if opts.framesDir != "" {
		if err := writeFrame(opts.framesDir, frame, a.surface.Snapshot()); err != nil {
			sess.Cancel()
			return err
		}
	}
	handle := func(ev diagram.Event) error {
		if ev.Type != diagram.EventPaint {
			return nil
		}
		if ev.State == diagram.StateActive {
			step++
			printStep(step, string(ev.Node), ev.State)
		}
		if opts.framesDir == "" {
			return nil
		}
		frame++
		return writeFrame(opts.framesDir, frame, a.surface.Snapshot())
	}

loop:
	for {
		select {
		case <-sess.Done():
			break loop
		case ev := <-ch:
			if err := handle(ev); err != nil {
				sess.Cancel()
				return err
			}
		}
	}
	// Paints publish before the session ends, so whatever is left is buffered.
	for drained := false; !drained; {
		select {
		case ev := <-ch:
			if err := handle(ev); err != nil {
				return err
			}
		default:
			drained = true
		}
	}

	if sess.State() == animate.StateCancelled {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fmt.Errorf("search for %v cancelled", value)
	}
	if err := sess.Err(); err != nil {
		printWarning("Search stopped after %d steps: %s", step, errors.UserMessage(err))
		return err
	}
	prog.done(fmt.Sprintf("Visited %d nodes", len(path)))

	final := a.surface.Snapshot()
	if !opts.quiet {
		fmt.Fprint(stdout, sink.RenderTerminal(final))
	}
	if opts.output != "" {
		if err := writeFile(opts.output, sink.RenderSVG(final)); err != nil {
			return err
		}
		printFile(opts.output)
	}
	return nil
}

func writeFrame(dir string, n int, sc *diagram.Scene) error {
	return writeFile(filepath.Join(dir, fmt.Sprintf("frame-%03d.svg", n)), sink.RenderSVG(sc, sink.WithStateClasses()))
}
