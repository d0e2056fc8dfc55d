package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/schedule"
)

// demoCommand creates the demo command, which round-trips the sample
// schedule through a file.
func (c *CLI) demoCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Save and reload the sample schedule",
		Long: `Save and reload the sample schedule.

The demo builds a schedule of six trips on two routes whose stops are shared
between the routes, prints it, saves it to an archive, loads the archive and
prints the result. Stops and routes carry the same labels before and after,
showing that every shared object is still shared.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDemo(cmd.Context(), cmd.OutOrStdout(), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "schedule"+archiveExt, "archive file to write")

	return cmd
}

func (c *CLI) runDemo(ctx context.Context, w io.Writer, output string) error {
	logger := loggerFromContext(ctx)
	original := schedule.Sample()

	fmt.Fprintln(w, StyleTitle.Render("original schedule"))
	if err := schedule.Format(w, original); err != nil {
		return err
	}

	prog := newProgress(logger)
	if err := schedule.Save(original, output, c.archiveOptions()...); err != nil {
		return fmt.Errorf("save demo: %w", err)
	}
	prog.done("Saved schedule", "path", output)

	prog = newProgress(logger)
	restored, err := schedule.Load(output, c.archiveOptions()...)
	if err != nil {
		return fmt.Errorf("load demo: %w", err)
	}
	prog.done("Loaded schedule", "path", output)

	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render("restored schedule"))
	if err := schedule.Format(w, restored); err != nil {
		return err
	}
	fmt.Fprintln(w)

	if !schedule.Equal(original, restored) {
		printError(w, "restored values differ from the original")
		return aerrors.New(aerrors.ErrCodeInternal, "demo round trip changed values")
	}
	if !schedule.SameShape(original, restored) {
		printError(w, "restored sharing differs from the original")
		return aerrors.New(aerrors.ErrCodeInternal, "demo round trip changed sharing")
	}
	printSuccess(w, "Round trip preserved values and sharing")
	printSummary(w, schedule.Summarize(restored))
	printFile(w, output)
	return nil
}
