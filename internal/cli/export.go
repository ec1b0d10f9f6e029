package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/export"
)

// exportCommand creates the export command for rendering layouts as images.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output string
		format string
	)
	opts := export.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "export [layout.json]",
		Short: "Render a saved layout as SVG or PNG",
		Long: `Render a saved layout as SVG or PNG.

The export command draws each block as a rounded rectangle on the grid,
colored deterministically by block ID, so two exports of the same layout
are always identical. The format is taken from the output extension and
can be overridden with --format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(args[0], output, format, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.svg)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: svg, png (default: from extension)")
	cmd.Flags().IntVar(&opts.CellWidth, "cell-width", opts.CellWidth, "cell width in pixels")
	cmd.Flags().IntVar(&opts.RowHeight, "row-height", opts.RowHeight, "row height in pixels")
	cmd.Flags().IntVar(&opts.Gap, "gap", opts.Gap, "gap between cells in pixels")
	cmd.Flags().IntVar(&opts.Padding, "padding", opts.Padding, "frame padding in pixels")

	return cmd
}

// runExport loads the layout and renders it to the requested format.
func (c *CLI) runExport(input, output, format string, opts export.Options) error {
	l, err := readLayoutFile(input)
	if err != nil {
		return err
	}

	if output == "" {
		ext := ".svg"
		if format == "png" {
			ext = ".png"
		}
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ext
	}
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(output), ".")
	}

	pr := newProgress(c.Logger)

	switch format {
	case "svg":
		if err := os.WriteFile(output, export.SVG(l, opts), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
	case "png":
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		if err := export.PNG(l, opts, f); err != nil {
			f.Close()
			return fmt.Errorf("render %s: %w", output, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", output, err)
		}
	default:
		return fmt.Errorf("unknown format %q (want svg or png)", format)
	}

	pr.done(fmt.Sprintf("Rendered %d blocks as %s", len(l.Blocks), format))

	printSuccess("Export complete")
	printFile(output)
	return nil
}
