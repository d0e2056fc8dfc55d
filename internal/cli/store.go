package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/busarchive/internal/config"
	"github.com/matzehuels/busarchive/pkg/schedule"
	"github.com/matzehuels/busarchive/pkg/store"
)

// storeCommand creates the store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep archives in the configured store",
		Long: `Keep archives in the configured store.

The backend is chosen by [store] backend in the config file or
BUSARCHIVE_STORE_BACKEND: file (default), redis, mongo or none.`,
	}

	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storeRmCommand())
	cmd.AddCommand(c.storePathCommand())

	return cmd
}

func (c *CLI) storePutCommand() *cobra.Command {
	var (
		key string
		ttl time.Duration
	)

	cmd := &cobra.Command{
		Use:   "put [archive]",
		Short: "Store an archive and print its key",
		Long: `Store an archive and print its key.

The archive is decoded before storing, so only valid archives are stored,
always in the current record versions. Without --key a random key is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("ttl") {
				var err error
				if ttl, err = c.Config.Store.TTLDuration(); err != nil {
					return err
				}
			}
			return c.runStorePut(cmd.Context(), cmd.OutOrStdout(), args[0], key, ttl)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "key to store under (default: random UUID)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "expiry (default: [store] ttl, 0 = never)")

	return cmd
}

func (c *CLI) runStorePut(ctx context.Context, w io.Writer, path, key string, ttl time.Duration) error {
	s, err := schedule.Load(path, c.archiveOptions()...)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	prog := newProgress(loggerFromContext(ctx))
	key, err = store.SaveSchedule(ctx, st, key, s, ttl)
	if err != nil {
		return err
	}
	prog.done("Stored archive", "key", key, "backend", c.Config.Store.Backend)

	fmt.Fprintln(w, key)
	return nil
}

func (c *CLI) storeGetCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Fetch a stored archive into a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = args[0] + archiveExt
			}
			return c.runStoreGet(cmd.Context(), cmd.OutOrStdout(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "archive file (default: <key>.busarchive)")

	return cmd
}

func (c *CLI) runStoreGet(ctx context.Context, w io.Writer, key, output string) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	s, err := store.LoadSchedule(ctx, st, key)
	if err != nil {
		return err
	}
	if err := schedule.Save(s, output, c.archiveOptions()...); err != nil {
		return fmt.Errorf("save %s: %w", output, err)
	}
	printSuccess(w, "Fetched %s", key)
	printSummary(w, schedule.Summarize(s))
	printFile(w, output)
	return nil
}

func (c *CLI) storeRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [key]...",
		Short: "Remove stored archives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, key := range args {
				if err := st.Delete(ctx, key); err != nil {
					return err
				}
			}
			printSuccess(cmd.OutOrStdout(), "Removed %d archives", len(args))
			return nil
		},
	}
}

func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file store directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if c.Config.Store.Backend != config.BackendFile {
				printInfo(w, "store backend is %s", c.Config.Store.Backend)
				return nil
			}
			fmt.Fprintln(w, c.Config.Store.Dir)
			return nil
		},
	}
}
