package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/grid/reflow"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// reflowCommand creates the reflow command for batch collision resolution.
func (c *CLI) reflowCommand() *cobra.Command {
	var (
		output     string
		configPath string
		blockID    string
		x, y       int
		w, h       int
	)

	cmd := &cobra.Command{
		Use:   "reflow [layout.json]",
		Short: "Move a block in a saved layout and resolve collisions",
		Long: `Move a block in a saved layout and resolve collisions.

The reflow command loads a layout file, places the block named by --block at
the position given by --x/--y (and optionally --w/--h for a resize), and then
pushes every overlapped block downward until the layout is collision-free
again. The resolved layout is written to --output or stdout.

Blocks are only ever pushed down, never sideways, so column assignments of
unrelated blocks are preserved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReflow(cmd.Context(), args[0], output, configPath, blockID, x, y, w, h, cmd.Flags().Changed("w"), cmd.Flags().Changed("h"))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&configPath, "config", "", "policy file (TOML)")
	cmd.Flags().StringVarP(&blockID, "block", "b", "", "ID of the block to move (required)")
	cmd.Flags().IntVar(&x, "x", 0, "target column")
	cmd.Flags().IntVar(&y, "y", 0, "target row")
	cmd.Flags().IntVar(&w, "w", 0, "new width in columns (default: keep)")
	cmd.Flags().IntVar(&h, "h", 0, "new height in rows (default: keep)")
	_ = cmd.MarkFlagRequired("block")

	return cmd
}

// runReflow loads the layout, applies the move, resolves, and writes output.
func (c *CLI) runReflow(ctx context.Context, input, output, configPath, blockID string, x, y, w, h int, wSet, hSet bool) error {
	pol, err := loadPolicy(configPath)
	if err != nil {
		return err
	}

	l, err := readLayoutFile(input)
	if err != nil {
		return err
	}

	m, err := layout.ToModel(l, pol.BlockConstraints())
	if err != nil {
		return fmt.Errorf("build model from %s: %w", input, err)
	}

	cur, ok := m.Get(blockID)
	if !ok {
		return fmt.Errorf("layout %s has no block %q", input, blockID)
	}

	target := grid.Rect{X: x, Y: y, W: cur.Rect.W, H: cur.Rect.H}
	if wSet {
		target.W = w
	}
	if hSet {
		target.H = h
	}
	target.W = cur.Constraints.ClampW(target.W)
	target.H = cur.Constraints.ClampH(target.H)

	engine, err := reflow.New(pol.Reflow.Strategy, pol.Reflow.IterationCap)
	if err != nil {
		return err
	}

	pr := newProgress(c.Logger)

	if err := m.Apply(blockID, target); err != nil {
		return fmt.Errorf("place %s at %s: %w", blockID, target, err)
	}
	displaced, err := engine.Commit(m, blockID)
	if err != nil {
		return err
	}

	pr.done(fmt.Sprintf("Moved %s to %s, displaced %d blocks", blockID, target, len(displaced)))

	resolved := layout.FromModel(m)
	if err := writeLayoutFile(resolved, output); err != nil {
		return err
	}

	printSuccess("Reflow complete")
	printStats(m.Len(), m.Columns(), len(displaced))
	for _, b := range displaced {
		printDetail("%s %s %s", b.ID, iconArrow, b.Rect)
	}
	if output != "" {
		printFile(output)
		printNextStep("Render it", fmt.Sprintf("gridboard export %s -o layout.svg", output))
	}
	return nil
}

// =============================================================================
// Layout File I/O
// =============================================================================

// readLayoutFile loads and parses a layout JSON file.
func readLayoutFile(path string) (layout.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("read layout %s: %w", path, err)
	}
	l, err := layout.Unmarshal(data)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("parse layout %s: %w", path, err)
	}
	return l, nil
}

// writeLayoutFile marshals l and writes it to path, or stdout when path is
// empty.
func writeLayoutFile(l layout.Layout, path string) error {
	data, err := l.Marshal()
	if err != nil {
		return err
	}
	if path == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write layout %s: %w", path, err)
	}
	return nil
}
