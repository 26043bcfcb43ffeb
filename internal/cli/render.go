package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treewalk/pkg/diagram"
	"github.com/matzehuels/treewalk/pkg/render/sink"
)

// Output formats.
const (
	formatSVG  = "svg"  // hand-written SVG
	formatJSON = "json" // scene with element ids and states
	formatDOT  = "dot"  // Graphviz source with pinned positions
	formatPNG  = "png"  // rasterised through Graphviz
	formatText = "txt"  // terminal drawing
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{
	formatSVG: true, formatJSON: true, formatDOT: true, formatPNG: true, formatText: true,
}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string
	formats   []string
	nilLeaves bool
	width     float64
	height    float64
	graphviz  bool // route SVG through Graphviz instead of the built-in writer
}

func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the tree to SVG, JSON, DOT, PNG or text",
		Long: `Render fetches the tree once and writes the diagram.

With a single format and no --output the result goes to stdout. With several
formats, --output is used as the base name (default "tree").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			c.applyRenderFlags(cmd, opts)
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, png, txt (comma-separated)")
	cmd.Flags().BoolVar(&opts.nilLeaves, "nil-leaves", false, "draw nil sentinel leaves")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "frame width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "frame height (default from config)")
	cmd.Flags().BoolVar(&opts.graphviz, "graphviz", false, "render SVG through Graphviz")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{formatSVG, formatJSON, formatDOT, formatPNG, formatText}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// applyRenderFlags overrides the configuration with explicitly set flags.
func (c *CLI) applyRenderFlags(cmd *cobra.Command, opts renderOpts) {
	if cmd.Flags().Changed("nil-leaves") {
		c.cfg.Render.NilLeaves = opts.nilLeaves
	}
	if cmd.Flags().Changed("width") && opts.width > 0 {
		c.cfg.Render.Width = opts.width
	}
	if cmd.Flags().Changed("height") && opts.height > 0 {
		c.cfg.Render.Height = opts.height
	}
}

func (c *CLI) runRender(ctx context.Context, stdout io.Writer, opts renderOpts) error {
	a, err := c.newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	prog := newProgress(c.Logger)
	n, stale, err := a.drawWithSpinner(ctx)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d nodes", n))
	if stale {
		printWarning("Service unreachable, rendered cached tree")
	}

	sc := a.surface.Snapshot()
	if len(opts.formats) == 1 && opts.output == "" {
		data, err := encodeScene(ctx, sc, opts.formats[0], opts)
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	}

	base := basePath(opts.output)
	for _, format := range opts.formats {
		path := base + "." + format
		if len(opts.formats) == 1 {
			path = opts.output
		}
		data, err := encodeScene(ctx, sc, format, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		if err := writeFile(path, data); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// encodeScene serialises sc in format.
func encodeScene(ctx context.Context, sc *diagram.Scene, format string, opts renderOpts) ([]byte, error) {
	switch format {
	case formatSVG:
		if opts.graphviz {
			return sink.RenderGraphviz(ctx, sink.ToDOT(sc, sink.DOTOptions{Pinned: true}), sink.FormatSVG)
		}
		return sink.RenderSVG(sc), nil
	case formatJSON:
		return sink.RenderJSON(sc)
	case formatDOT:
		return []byte(sink.ToDOT(sc, sink.DOTOptions{Pinned: true})), nil
	case formatPNG:
		return sink.RenderGraphviz(ctx, sink.ToDOT(sc, sink.DOTOptions{Pinned: true}), sink.FormatPNG)
	case formatText:
		return []byte(sink.RenderTerminal(sc, sink.WithPlain())), nil
	}
	return nil, fmt.Errorf("unknown format: %s", format)
}

// parseFormats parses the --format flag. Empty means svg.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be svg, json, dot, png or txt)", f)
		}
	}
	return nil
}

// basePath strips a known format extension from output, defaulting to "tree".
func basePath(output string) string {
	if output == "" {
		return "tree"
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
