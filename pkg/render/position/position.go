package position

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by [Config.Validate] when a field is out of range.
var ErrInvalidConfig = errors.New("invalid layout config")

// Orientation selects the axis along which sibling milestones are laid out.
type Orientation string

const (
	// Horizontal lays siblings out along X and stacks levels downward along Y.
	Horizontal Orientation = "horizontal"
	// Vertical lays siblings out along Y and stacks levels rightward along X.
	Vertical Orientation = "vertical"
)

// Alignment controls where a child row is anchored relative to its parent.
type Alignment string

const (
	// AlignStart starts the child row at the parent's coordinate.
	AlignStart Alignment = "start"
	// AlignCenter centers the child row on the parent's coordinate.
	AlignCenter Alignment = "center"
)

// Position is an absolute coordinate in layout space, marking the top-left
// corner of a node box.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Position) String() string { return fmt.Sprintf("(%g,%g)", p.X, p.Y) }

// Config is the read-only geometry input of a layout pass.
type Config struct {
	StartX            float64     `json:"startX" toml:"start_x"`
	StartY            float64     `json:"startY" toml:"start_y"`
	HorizontalSpacing float64     `json:"horizontalSpacing" toml:"horizontal_spacing"`
	VerticalSpacing   float64     `json:"verticalSpacing" toml:"vertical_spacing"`
	NodeWidth         float64     `json:"nodeWidth" toml:"node_width"`
	NodeHeight        float64     `json:"nodeHeight" toml:"node_height"`
	AffordanceSize    float64     `json:"affordanceSize" toml:"affordance_size"`
	BoundaryOffset    float64     `json:"boundaryOffset" toml:"boundary_offset"` // fraction of the axis spacing
	Orientation       Orientation `json:"orientation" toml:"orientation"`
	Alignment         Alignment   `json:"alignment" toml:"alignment"`
}

// Default geometry, matching the product's timeline canvas.
const (
	DefaultHorizontalSpacing = 300.0
	DefaultVerticalSpacing   = 200.0
	DefaultNodeWidth         = 220.0
	DefaultNodeHeight        = 80.0
	DefaultAffordanceSize    = 32.0
	DefaultBoundaryOffset    = 0.25
)

// DefaultConfig returns the product defaults: horizontal orientation, rows
// anchored at the parent's start, origin at (0,0).
func DefaultConfig() Config {
	return Config{
		HorizontalSpacing: DefaultHorizontalSpacing,
		VerticalSpacing:   DefaultVerticalSpacing,
		NodeWidth:         DefaultNodeWidth,
		NodeHeight:        DefaultNodeHeight,
		AffordanceSize:    DefaultAffordanceSize,
		BoundaryOffset:    DefaultBoundaryOffset,
		Orientation:       Horizontal,
		Alignment:         AlignStart,
	}
}

// Validate checks that spacing and sizes are positive and the enums known.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"horizontal spacing", c.HorizontalSpacing},
		{"vertical spacing", c.VerticalSpacing},
		{"node width", c.NodeWidth},
		{"node height", c.NodeHeight},
		{"affordance size", c.AffordanceSize},
	} {
		if f.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidConfig, f.name, f.v)
		}
	}
	if c.BoundaryOffset < 0 || c.BoundaryOffset > 1 {
		return fmt.Errorf("%w: boundary offset must be within [0,1], got %g", ErrInvalidConfig, c.BoundaryOffset)
	}
	switch c.Orientation {
	case Horizontal, Vertical:
	default:
		return fmt.Errorf("%w: unknown orientation %q", ErrInvalidConfig, c.Orientation)
	}
	switch c.Alignment {
	case AlignStart, AlignCenter:
	default:
		return fmt.Errorf("%w: unknown alignment %q", ErrInvalidConfig, c.Alignment)
	}
	return nil
}

// axes returns the spacing along the sibling axis, the spacing between
// levels and the node extent across the sibling axis.
func (c Config) axes() (along, across, extent float64) {
	if c.Orientation == Vertical {
		return c.VerticalSpacing, c.HorizontalSpacing, c.NodeWidth
	}
	return c.HorizontalSpacing, c.VerticalSpacing, c.NodeHeight
}

// oriented maps (along, across) coordinates onto X and Y.
func (c Config) oriented(along, across float64) Position {
	if c.Orientation == Vertical {
		return Position{X: across, Y: along}
	}
	return Position{X: along, Y: across}
}

func (c Config) split(p Position) (along, across float64) {
	if c.Orientation == Vertical {
		return p.Y, p.X
	}
	return p.X, p.Y
}

// Compute returns positions for a sibling group of n nodes.
//
// Root groups (parent == nil) start at the configured origin. Child groups
// anchor to the parent's coordinate along the sibling axis and sit one level
// spacing below it, minus half a node so the row centers on the connector.
// The result depends only on the arguments.
func Compute(n int, cfg Config, parent *Position, level int) []Position {
	if n <= 0 {
		return nil
	}
	along, across, extent := cfg.axes()

	var originAlong, originAcross float64
	if parent == nil {
		originAlong, originAcross = cfg.split(Position{X: cfg.StartX, Y: cfg.StartY})
		originAcross += float64(level) * across
	} else {
		pa, pc := cfg.split(*parent)
		originAlong = pa
		originAcross = pc + across - extent/2
		if cfg.Alignment == AlignCenter {
			originAlong -= float64(n-1) * along / 2
		}
	}

	out := make([]Position, n)
	for i := range out {
		out[i] = cfg.oriented(originAlong+float64(i)*along, originAcross)
	}
	return out
}

// BoundaryBefore returns the top-left corner of a boundary affordance placed
// ahead of the node at first.
func BoundaryBefore(first Position, cfg Config) Position {
	along, _, _ := cfg.axes()
	a, c := cfg.split(first)
	return cfg.oriented(a-cfg.BoundaryOffset*along, c+centerOffset(cfg))
}

// BoundaryAfter returns the top-left corner of a boundary affordance placed
// after the node at last.
func BoundaryAfter(last Position, cfg Config) Position {
	along, _, _ := cfg.axes()
	a, c := cfg.split(last)
	return cfg.oriented(a+nodeAlong(cfg)+cfg.BoundaryOffset*along-cfg.AffordanceSize, c+centerOffset(cfg))
}

// LeafSlot returns the top-left corner of the "add child" affordance of the
// node at p, placed on the child side of the node.
func LeafSlot(p Position, cfg Config) Position {
	_, across, extent := cfg.axes()
	a, c := cfg.split(p)
	return cfg.oriented(a+(nodeAlong(cfg)-cfg.AffordanceSize)/2, c+extent+cfg.BoundaryOffset*across)
}

// centerOffset centers an affordance on a node across the sibling axis.
func centerOffset(cfg Config) float64 {
	_, _, extent := cfg.axes()
	return (extent - cfg.AffordanceSize) / 2
}

// nodeAlong is the node extent along the sibling axis.
func nodeAlong(cfg Config) float64 {
	if cfg.Orientation == Vertical {
		return cfg.NodeHeight
	}
	return cfg.NodeWidth
}
