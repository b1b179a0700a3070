package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/aseptimu/codepool-shortener/internal/app/server"
	"github.com/aseptimu/codepool-shortener/internal/app/service"
	"github.com/aseptimu/codepool-shortener/internal/app/store"
	"github.com/aseptimu/codepool-shortener/internal/app/utils"
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations to the authoritative store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.DSN == "" {
				return errors.New("DATABASE_DSN is not set")
			}
			if err := store.MigrateDB(cfg.DSN, opts.logger()); err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), map[string]string{"status": "ok"}, "migrations applied")
		},
	}
}

func newSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Overwrite the fast store with the authoritative store contents",
		Long: `Fetch every mapping and setting from the authoritative store and replace
the fast store contents with them. Run it only while the service is stopped:
a running instance keeps its own in-memory pool and replication queue.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := opts.logger()
			fast, remote, err := server.OpenStores(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer fast.Close()
			defer remote.Close()

			result, err := store.NewSyncer(fast, remote, logger).FullSync(cmd.Context())
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), result,
				fmt.Sprintf("synced %d mappings, %d settings", result.Mappings, result.Settings))
		},
	}
}

type statsOutput struct {
	URLs    int   `json:"urls"`
	Counter int64 `json:"counter"`
}

func newStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show mapping count and counter of the fast store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			fast, remote, err := server.OpenStores(cmd.Context(), cfg, opts.logger())
			if err != nil {
				return err
			}
			defer fast.Close()
			defer remote.Close()

			urls, err := fast.Count(cmd.Context())
			if err != nil {
				return err
			}
			counter, err := fast.GetSetting(cmd.Context(), service.CounterSetting)
			if err != nil {
				return err
			}
			out := statsOutput{URLs: urls, Counter: counter}
			return opts.print(cmd.OutOrStdout(), out, fmt.Sprintf("urls: %d\ncounter: %d", urls, counter))
		},
	}
}

func newEncodeCommand(opts *RootOptions) *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:   "encode <n>...",
		Short: "Encode counter values into short codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codes := make(map[string]string, len(args))
			for _, arg := range args {
				n, err := strconv.ParseUint(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid number %q: %w", arg, err)
				}
				code, err := utils.EncodeBase62(n, length)
				if err != nil {
					return fmt.Errorf("encode %d: %w", n, err)
				}
				codes[arg] = code
				if opts.Format == "text" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", arg, code)
				}
			}
			if opts.Format == "json" {
				return opts.print(cmd.OutOrStdout(), codes, "")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&length, "len", utils.DefaultCodeLength, "code length")
	return cmd
}
