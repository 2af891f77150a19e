package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/thomaskoefod/feeddash/internal/api"
	"github.com/thomaskoefod/feeddash/internal/opml"
)

func newOPMLCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "opml",
		Short: "Import or export feeds as OPML",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write every known feed to an OPML file (- for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.session.IsAuthenticated() {
				return api.ErrUnauthenticated
			}
			if err := a.cache.Refresh(ctx); err != nil {
				return err
			}
			feeds := a.cache.FeedsWithFollowStatus()
			data, err := opml.Export(feeds, time.Now())
			if err != nil {
				return err
			}

			if args[0] == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d feeds to %s\n", len(feeds), args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Create the feeds listed in an OPML file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			a, err := openApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.session.IsAuthenticated() {
				return api.ErrUnauthenticated
			}
			if err := a.cache.Refresh(ctx); err != nil {
				return err
			}
			result, err := opml.Import(ctx, data, a.cache.Feeds(), a.cache)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d of %d feeds (%d already known)\n", result.Imported, result.Total, result.Skipped)
			for _, e := range result.Errors {
				fmt.Fprintln(out, "  failed:", e)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d feeds could not be imported", len(result.Errors))
			}
			return nil
		},
	})

	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
