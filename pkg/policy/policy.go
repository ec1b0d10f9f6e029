// Package policy holds the engine's configuration values: grid geometry
// defaults, reflow behavior, interaction flags, and expand targets.
//
// A Policy is populated once at construction - from built-in defaults,
// optionally overlaid by a TOML file - and handed to the engine as a plain
// value. The engine's control flow never branches on whether configuration
// is "present"; absent keys simply keep their defaults.
package policy

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/grid/reflow"
)

// Built-in defaults.
const (
	// DefaultColumns is the column count for new grids.
	DefaultColumns = 12

	// DefaultRowHeight is the fixed row height in pixels.
	DefaultRowHeight = 80

	// DefaultGap is the vertical gap between rows in pixels.
	DefaultGap = 8

	// DefaultExpandMinRows is the minimum height, in rows, of an expanded block.
	DefaultExpandMinRows = 8
)

// Expand modes.
const (
	// ExpandModeOverlay grows the block visually without moving neighbors.
	ExpandModeOverlay = "overlay"

	// ExpandModeReflow pushes blocks below the expanding one downward.
	ExpandModeReflow = "reflow"
)

// Policy is the full configuration consumed by the engine.
type Policy struct {
	// Columns is the grid's column count.
	Columns int `toml:"columns"`

	// RowHeight is the fixed row height in pixels, used for pointer-to-cell
	// conversion.
	RowHeight int `toml:"row_height"`

	// Gap is the vertical gap between rows in pixels.
	Gap int `toml:"gap"`

	// Constraints are the default per-block size bounds applied to blocks
	// that carry none of their own.
	Constraints Constraints `toml:"constraints"`

	Reflow      Reflow      `toml:"reflow"`
	Interaction Interaction `toml:"interaction"`
	Expand      Expand      `toml:"expand"`
}

// Constraints mirrors grid.Constraints for TOML decoding.
type Constraints struct {
	MinW int `toml:"min_w"`
	MinH int `toml:"min_h"`
	MaxW int `toml:"max_w"`
	MaxH int `toml:"max_h"`
}

// Reflow configures overlap resolution.
type Reflow struct {
	// Enabled turns commit-time reflow on; when false, a colliding drop
	// is simply reverted.
	Enabled bool `toml:"enabled"`

	// Strategy names the resolution strategy. "push_down" is the only
	// implemented value; the key exists as an extension point.
	Strategy string `toml:"strategy"`

	// IterationCap bounds relaxation passes. Zero selects the engine default.
	IterationCap int `toml:"iteration_cap"`
}

// Interaction configures drag/resize behavior.
type Interaction struct {
	// LivePreview applies candidate positions to a preview reflow during
	// the drag instead of gating them on collision checks.
	LivePreview bool `toml:"live_preview"`
}

// Expand configures the expand/collapse controller.
type Expand struct {
	// Mode is "overlay" or "reflow".
	Mode string `toml:"mode"`

	// FullWidth stretches an expanded block across all columns.
	FullWidth bool `toml:"full_width"`

	// MinRows is the minimum height of an expanded block, in rows.
	MinRows int `toml:"min_rows"`
}

// Default returns the built-in policy.
func Default() Policy {
	return Policy{
		Columns:   DefaultColumns,
		RowHeight: DefaultRowHeight,
		Gap:       DefaultGap,
		Constraints: Constraints{
			MinW: 1,
			MinH: 1,
		},
		Reflow: Reflow{
			Enabled:      true,
			Strategy:     reflow.StrategyPushDown,
			IterationCap: reflow.DefaultIterationCap,
		},
		Interaction: Interaction{
			LivePreview: true,
		},
		Expand: Expand{
			Mode:      ExpandModeReflow,
			FullWidth: true,
			MinRows:   DefaultExpandMinRows,
		},
	}
}

// Load reads a TOML policy file over the built-in defaults and validates
// the result. Keys absent from the file keep their default values.
func Load(path string) (Policy, error) {
	p := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, errors.Wrap(errors.ErrCodeInvalidPolicy, err, "read policy file %s", path)
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return Policy{}, errors.Wrap(errors.ErrCodeInvalidPolicy, err, "parse policy file %s", path)
	}

	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks the policy's value ranges and enum fields.
func (p Policy) Validate() error {
	if p.Columns < 1 {
		return errors.New(errors.ErrCodeInvalidPolicy, "columns must be >= 1, got %d", p.Columns)
	}
	if p.RowHeight < 1 {
		return errors.New(errors.ErrCodeInvalidPolicy, "row_height must be >= 1, got %d", p.RowHeight)
	}
	if p.Gap < 0 {
		return errors.New(errors.ErrCodeInvalidPolicy, "gap must be >= 0, got %d", p.Gap)
	}
	if _, err := reflow.NewStrategy(p.Reflow.Strategy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPolicy, err, "reflow strategy")
	}
	if p.Reflow.IterationCap < 0 {
		return errors.New(errors.ErrCodeInvalidPolicy, "iteration_cap must be >= 0, got %d", p.Reflow.IterationCap)
	}
	switch p.Expand.Mode {
	case ExpandModeOverlay, ExpandModeReflow:
	default:
		return errors.New(errors.ErrCodeInvalidPolicy, "expand mode must be %q or %q, got %q",
			ExpandModeOverlay, ExpandModeReflow, p.Expand.Mode)
	}
	if p.Expand.MinRows < 1 {
		return errors.New(errors.ErrCodeInvalidPolicy, "expand min_rows must be >= 1, got %d", p.Expand.MinRows)
	}
	return nil
}

// BlockConstraints converts the default constraints into the grid type.
func (p Policy) BlockConstraints() grid.Constraints {
	return grid.Constraints{
		MinW: p.Constraints.MinW,
		MinH: p.Constraints.MinH,
		MaxW: p.Constraints.MaxW,
		MaxH: p.Constraints.MaxH,
	}
}
