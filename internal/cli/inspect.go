package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/matzehuels/busarchive/pkg/archive"
	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/schedule"
)

// =============================================================================
// show
// =============================================================================

func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [archive]",
		Short: "Print the trips and stops of an archive as tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShow(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func (c *CLI) runShow(ctx context.Context, w io.Writer, path string) error {
	prog := newProgress(loggerFromContext(ctx))
	s, err := schedule.Load(path, c.archiveOptions()...)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	prog.done("Loaded archive", "path", path)

	labels := schedule.NewLabeler()
	fmt.Fprintln(w, StyleTitle.Render(path))
	fmt.Fprintln(w, tripTable(s, labels).Render())
	fmt.Fprintln(w, stopTable(s, labels).Render())
	printSummary(w, schedule.Summarize(s))
	return nil
}

// =============================================================================
// verify
// =============================================================================

func (c *CLI) verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [archive]",
		Short: "Check that an archive decodes and re-encodes without loss",
		Long: `Check that an archive decodes and re-encodes without loss.

verify decodes the archive, writes the result to a new archive, decodes that
again and checks values and sharing are unchanged. Records stored at an
older schema version are valid and counted in a warning; saving the archive
again upgrades them to the current versions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVerify(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func (c *CLI) runVerify(ctx context.Context, w io.Writer, path string) error {
	logger := loggerFromContext(ctx)
	data, err := readArchiveFile(path)
	if err != nil {
		return err
	}

	decoded := schedule.New()
	r := archive.NewReader(bytes.NewReader(data), c.archiveOptions()...)
	if err := r.Decode(decoded); err != nil {
		printError(w, "%s does not decode", path)
		return fmt.Errorf("verify %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := archive.NewWriter(&buf, c.archiveOptions()...).Encode(decoded); err != nil {
		return fmt.Errorf("re-encode %s: %w", path, err)
	}
	again, err := schedule.Read(bytes.NewReader(buf.Bytes()), c.archiveOptions()...)
	if err != nil {
		return fmt.Errorf("decode re-encoded %s: %w", path, err)
	}
	if !schedule.Equal(decoded, again) || !schedule.SameShape(decoded, again) {
		printError(w, "%s changes when re-encoded", path)
		return aerrors.New(aerrors.ErrCodeInternal, "re-encoding %s is lossy", path)
	}
	logger.Debug("re-encoded archive", "bytes", buf.Len(), "original", len(data))

	printSuccess(w, "%s is valid", path)
	printStats(w, r.Stats())
	printSummary(w, schedule.Summarize(decoded))
	if n := r.Stats().Outdated; n > 0 {
		printWarning(w, "%d records use older schema versions; saving the archive again upgrades them", n)
	}
	return nil
}

func readArchiveFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, aerrors.Wrap(aerrors.ErrCodeNotFound, err, "failed to open %s", path)
	}
	if err != nil {
		return nil, aerrors.Wrap(aerrors.ErrCodeIOUnavailable, err, "failed to read %s", path)
	}
	return data, nil
}

// =============================================================================
// diff
// =============================================================================

func (c *CLI) diffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff [a] [b]",
		Short: "Compare the schedules stored in two archives",
		Long: `Compare the schedules stored in two archives.

Both schedules are listed the way 'show' labels them, so two archives with
equal values but different sharing also differ, and the listings are
compared line by line.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiff(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func (c *CLI) runDiff(ctx context.Context, w io.Writer, pathA, pathB string) error {
	a, err := schedule.Load(pathA, c.archiveOptions()...)
	if err != nil {
		return fmt.Errorf("load %s: %w", pathA, err)
	}
	b, err := schedule.Load(pathB, c.archiveOptions()...)
	if err != nil {
		return fmt.Errorf("load %s: %w", pathB, err)
	}

	sameValues, sameShape := schedule.Equal(a, b), schedule.SameShape(a, b)
	loggerFromContext(ctx).Debug("compared archives", "values", sameValues, "shape", sameShape)
	if sameValues && sameShape {
		printSuccess(w, "%s and %s hold the same schedule", pathA, pathB)
		return nil
	}

	textA, err := formatString(a)
	if err != nil {
		return err
	}
	textB, err := formatString(b)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, StyleDim.Render("--- "+pathA))
	fmt.Fprintln(w, StyleDim.Render("+++ "+pathB))
	writeLineDiff(w, textA, textB)

	switch {
	case !sameValues:
		printWarning(w, "schedules differ")
	default:
		printWarning(w, "schedules hold equal values but share objects differently")
	}
	return nil
}

func formatString(s *schedule.Schedule) (string, error) {
	var sb strings.Builder
	if err := schedule.Format(&sb, s); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// writeLineDiff writes a line-level diff of a and b, marking removed lines
// with "-" and added lines with "+".
func writeLineDiff(w io.Writer, a, b string) {
	dmp := diffpatch.New()
	charsA, charsB, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(charsA, charsB, false), lines)

	for _, d := range diffs {
		prefix, style := " ", StyleDim
		switch d.Type {
		case diffpatch.DiffInsert:
			prefix, style = "+", styleDiffInsert
		case diffpatch.DiffDelete:
			prefix, style = "-", styleDiffDelete
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			fmt.Fprintln(w, style.Render(prefix+strings.TrimSuffix(line, "\n")))
		}
	}
}
