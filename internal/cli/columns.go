package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/layout"
)

// columnsCommand creates the columns command for re-targeting a layout.
func (c *CLI) columnsCommand() *cobra.Command {
	var (
		output     string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "columns [layout.json] [count]",
		Short: "Re-target a saved layout to a different column count",
		Long: `Re-target a saved layout to a different column count.

The columns command loads a layout file and changes its column count, for
example when switching between a 12-column desktop grid and a 6-column
tablet grid. Blocks that no longer fit are clamped: first moved left, then
narrowed if they are still too wide. Rows are never touched.

Because clamping is lossy, switching to a narrower grid and back does not
restore the original widths. Keep the original file when you need a
round trip.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid column count %q: %w", args[1], err)
			}
			return c.runColumns(args[0], n, output, configPath)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&configPath, "config", "", "policy file (TOML)")

	return cmd
}

// runColumns loads the layout, applies the column change, and writes output.
func (c *CLI) runColumns(input string, n int, output, configPath string) error {
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

	_, clamped, err := m.SetColumns(n)
	if err != nil {
		return err
	}

	if err := writeLayoutFile(layout.FromModel(m), output); err != nil {
		return err
	}

	if clamped > 0 {
		printWarning("%d blocks clamped to fit %d columns", clamped, n)
	} else {
		printSuccess("Layout fits %d columns unchanged", n)
	}
	printStats(m.Len(), m.Columns(), clamped)
	if output != "" {
		printFile(output)
	}
	return nil
}
