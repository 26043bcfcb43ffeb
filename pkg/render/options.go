package render

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treewalk/pkg/layout"
)

// Default frame geometry.
const (
	DefaultWidth        = 600
	DefaultHeight       = 500
	DefaultMarginX      = 50
	DefaultMarginTop    = 100
	DefaultMarginBottom = 50
	DefaultRadius       = 20
)

// Default presentation colors.
const (
	DefaultEdgeStroke = "black"
	DefaultLabelFill  = "white"
)

// Options configures an [Engine].
type Options struct {
	// Width and Height of the diagram frame, margins included. The frame
	// grows when the tree would not fit without overlapping circles.
	Width, Height float64

	// MarginX is applied left and right; MarginTop and MarginBottom above
	// the root and below the deepest level.
	MarginX, MarginTop, MarginBottom float64

	// Radius of every node circle, independent of label length.
	Radius float64

	// NilLeaves adds grey sentinel leaves for missing children.
	NilLeaves bool

	// Separation overrides the sibling/cousin spacing rule.
	Separation layout.SeparationFunc

	EdgeStroke string
	LabelFill  string

	Logger *log.Logger
}

// Option mutates [Options].
type Option func(*Options)

// WithFrame sets the frame size.
func WithFrame(width, height float64) Option {
	return func(o *Options) { o.Width, o.Height = width, height }
}

// WithMargins sets the frame margins.
func WithMargins(x, top, bottom float64) Option {
	return func(o *Options) { o.MarginX, o.MarginTop, o.MarginBottom = x, top, bottom }
}

// WithRadius sets the node circle radius.
func WithRadius(r float64) Option { return func(o *Options) { o.Radius = r } }

// WithNilLeaves draws sentinel leaves labelled "nil" for missing children.
func WithNilLeaves() Option { return func(o *Options) { o.NilLeaves = true } }

// WithSeparation overrides the spacing rule between neighbouring nodes.
func WithSeparation(fn layout.SeparationFunc) Option {
	return func(o *Options) { o.Separation = fn }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *log.Logger) Option { return func(o *Options) { o.Logger = l } }

// DefaultOptions returns the standard frame: 600x500 with 50px side margins,
// the root 100px from the top, and circles of radius 20.
func DefaultOptions() Options {
	return Options{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		MarginX:      DefaultMarginX,
		MarginTop:    DefaultMarginTop,
		MarginBottom: DefaultMarginBottom,
		Radius:       DefaultRadius,
		EdgeStroke:   DefaultEdgeStroke,
		LabelFill:    DefaultLabelFill,
	}
}

// ValidateAndSetDefaults fills zero fields with defaults.
func (o *Options) ValidateAndSetDefaults() {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.MarginX < 0 {
		o.MarginX = 0
	}
	if o.MarginTop < 0 {
		o.MarginTop = 0
	}
	if o.MarginBottom < 0 {
		o.MarginBottom = 0
	}
	if o.Radius <= 0 {
		o.Radius = d.Radius
	}
	if o.EdgeStroke == "" {
		o.EdgeStroke = d.EdgeStroke
	}
	if o.LabelFill == "" {
		o.LabelFill = d.LabelFill
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// layoutOptions derives the inner frame handed to the tidy layout. Circles
// need a diameter plus a small gap horizontally and some room for the edge
// vertically.
func (o Options) layoutOptions() layout.Options {
	return layout.Options{
		Width:       max(o.Width-2*o.MarginX, 0),
		Height:      max(o.Height-o.MarginTop-o.MarginBottom, 0),
		MinSpacing:  2*o.Radius + 5,
		MinLevelGap: 2*o.Radius + 20,
		Separation:  o.Separation,
	}
}
