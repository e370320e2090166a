package position

import (
	"errors"
	"slices"
	"testing"
)

func TestCompute(t *testing.T) {
	horizontal := DefaultConfig()
	centered := DefaultConfig()
	centered.Alignment = AlignCenter
	vertical := DefaultConfig()
	vertical.Orientation = Vertical
	offset := DefaultConfig()
	offset.StartX, offset.StartY = 50, 20

	tests := []struct {
		name   string
		n      int
		cfg    Config
		parent *Position
		level  int
		want   []Position
	}{
		{"root row", 3, horizontal, nil, 0, []Position{{0, 0}, {300, 0}, {600, 0}}},
		{"root row from origin", 2, offset, nil, 0, []Position{{50, 20}, {350, 20}}},
		{"child row", 2, horizontal, &Position{300, 0}, 1, []Position{{300, 160}, {600, 160}}},
		{"centered child row", 2, centered, &Position{300, 0}, 1, []Position{{150, 160}, {450, 160}}},
		{"centered single child", 1, centered, &Position{300, 0}, 1, []Position{{300, 160}}},
		{"vertical root", 2, vertical, nil, 0, []Position{{0, 0}, {0, 200}}},
		{"vertical child", 2, vertical, &Position{0, 200}, 1, []Position{{190, 200}, {190, 400}}},
		{"parentless deeper level", 1, horizontal, nil, 2, []Position{{0, 400}}},
		{"empty group", 0, horizontal, nil, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.n, tt.cfg, tt.parent, tt.level)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Compute() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeIsPure(t *testing.T) {
	cfg := DefaultConfig()
	parent := Position{X: 120, Y: 40}
	a := Compute(4, cfg, &parent, 1)
	b := Compute(4, cfg, &parent, 1)
	if !slices.Equal(a, b) {
		t.Errorf("Compute() not deterministic: %v vs %v", a, b)
	}
	if parent != (Position{X: 120, Y: 40}) {
		t.Errorf("parent mutated: %v", parent)
	}
}

func TestAffordanceAnchors(t *testing.T) {
	h := DefaultConfig()
	v := DefaultConfig()
	v.Orientation = Vertical

	tests := []struct {
		name string
		got  Position
		want Position
	}{
		{"before horizontal", BoundaryBefore(Position{0, 0}, h), Position{-75, 24}},
		{"after horizontal", BoundaryAfter(Position{300, 0}, h), Position{563, 24}},
		{"leaf horizontal", LeafSlot(Position{0, 0}, h), Position{94, 130}},
		{"before vertical", BoundaryBefore(Position{0, 0}, v), Position{94, -50}},
		{"after vertical", BoundaryAfter(Position{0, 200}, v), Position{94, 298}},
		{"leaf vertical", LeafSlot(Position{0, 0}, v), Position{295, 24}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"vertical centered", func(c *Config) { c.Orientation = Vertical; c.Alignment = AlignCenter }, false},
		{"zero spacing", func(c *Config) { c.HorizontalSpacing = 0 }, true},
		{"negative height", func(c *Config) { c.NodeHeight = -1 }, true},
		{"offset above one", func(c *Config) { c.BoundaryOffset = 1.5 }, true},
		{"unknown orientation", func(c *Config) { c.Orientation = "diagonal" }, true},
		{"empty alignment", func(c *Config) { c.Alignment = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
