package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/render"
	"github.com/matzehuels/busarchive/pkg/schedule"
)

// dotCommand creates the dot command for rendering an archive's object graph.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		output string
		svg    bool
		opts   render.Options
	)

	cmd := &cobra.Command{
		Use:   "dot [archive]",
		Short: "Render the object graph of an archive as DOT or SVG",
		Long: `Render the object graph of an archive as DOT or SVG.

Every trip, route and stop is drawn once; a stop visited by two routes has
two incoming edges. Without --output the result is written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDot(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], output, svg, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&svg, "svg", false, "render SVG with Graphviz instead of writing DOT")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include coordinates and stop counts in labels")

	return cmd
}

func (c *CLI) runDot(ctx context.Context, w, status io.Writer, input, output string, svg bool, opts render.Options) error {
	s, err := schedule.Load(input, c.archiveOptions()...)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	data := []byte(render.ToDOT(s, opts))
	if svg {
		data, err = spin(ctx, status, "Rendering SVG...", func() ([]byte, error) {
			return render.RenderSVG(ctx, string(data))
		})
		if err != nil {
			return fmt.Errorf("render %s: %w", input, err)
		}
	}

	if output == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return aerrors.Wrap(aerrors.ErrCodeIOUnavailable, err, "write %s", output)
	}
	printFile(w, output)
	return nil
}
