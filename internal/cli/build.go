package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/busarchive/pkg/gtfsimport"
	"github.com/matzehuels/busarchive/pkg/schedule"
)

// buildCommand creates the build command, which turns a TOML schedule
// definition into an archive.
func (c *CLI) buildCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build [schedule.toml]",
		Short: "Build an archive from a TOML schedule definition",
		Long: `Build an archive from a TOML schedule definition.

The definition lists stops, routes and trips:

  [[stop]]
  id = "24th-10th"
  kind = "corner"
  lat = { deg = 34, min = 135, sec = 52.56 }
  lon = { deg = 134, min = 22, sec = 78.3 }
  street1 = "24th Street"
  street2 = "10th Avenue"

  [[route]]
  id = "north"
  stops = ["24th-10th"]

  [[trip]]
  route = "north"
  hour = 6
  minute = 24
  driver = "bob"

Routes and trips refer to stops and routes by id; everything referring to
the same id shares one object in the archive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = defaultOutput(args[0])
			}
			return c.runBuild(cmd.Context(), cmd.OutOrStdout(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "archive file (default: input with .busarchive extension)")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, w io.Writer, input, output string) error {
	prog := newProgress(loggerFromContext(ctx))
	s, err := schedule.LoadDefinition(input)
	if err != nil {
		return fmt.Errorf("load definition %s: %w", input, err)
	}
	if err := schedule.Save(s, output, c.archiveOptions()...); err != nil {
		return fmt.Errorf("save %s: %w", output, err)
	}
	prog.done("Built archive", "input", input, "output", output)

	printSuccess(w, "Built archive from %s", input)
	printSummary(w, schedule.Summarize(s))
	printFile(w, output)
	return nil
}

// importGTFSCommand creates the import-gtfs command.
func (c *CLI) importGTFSCommand() *cobra.Command {
	var (
		output string
		opts   gtfsimport.Options
	)

	cmd := &cobra.Command{
		Use:   "import-gtfs [feed.zip]",
		Short: "Build an archive from a static GTFS feed",
		Long: `Build an archive from a static GTFS feed.

Each GTFS trip becomes a trip departing at its first stop, driven by its
block id. Trips of one route that visit the same stops share a route, and
every GTFS stop becomes one shared stop. Stop names of the form "A & B"
become corner stops; all others become destination stops.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = defaultOutput(args[0])
			}
			return c.runImportGTFS(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "archive file (default: input with .busarchive extension)")
	cmd.Flags().StringSliceVar(&opts.Routes, "route", nil, "only import these GTFS route ids (repeatable)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "import at most this many trips, earliest first (0 = all)")

	return cmd
}

func (c *CLI) runImportGTFS(ctx context.Context, w, status io.Writer, input, output string, opts gtfsimport.Options) error {
	prog := newProgress(loggerFromContext(ctx))
	s, err := spin(ctx, status, "Parsing GTFS feed...", func() (*schedule.Schedule, error) {
		return gtfsimport.ParseFile(input, opts)
	})
	if err != nil {
		return fmt.Errorf("import %s: %w", input, err)
	}
	if err := schedule.Save(s, output, c.archiveOptions()...); err != nil {
		return fmt.Errorf("save %s: %w", output, err)
	}
	prog.done("Imported GTFS feed", "input", input, "output", output, "trips", len(s.Entries))

	printSuccess(w, "Imported %s", input)
	printSummary(w, schedule.Summarize(s))
	printFile(w, output)
	return nil
}
