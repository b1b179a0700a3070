// Package cli реализует служебную утилиту shortctl: миграции, ручную синхронизацию
// быстрого хранилища, просмотр состояния и кодирование чисел в короткие коды.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/aseptimu/codepool-shortener/internal/app/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions - глобальные флаги всех команд.
type RootOptions struct {
	ConfigPath string
	SQLitePath string
	FilePath   string
	Format     string
	Verbose    bool
}

var validFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "shortctl",
		Short: "Operator tool for the short-code service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config")
	cmd.PersistentFlags().StringVar(&opts.SQLitePath, "sqlite", "", "override SQLite fast store path")
	cmd.PersistentFlags().StringVar(&opts.FilePath, "file", "", "override file storage path")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSyncCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))
	cmd.AddCommand(newEncodeCommand(opts))

	return cmd
}

// loadConfig читает конфигурацию сервиса и применяет поверх неё флаги shortctl.
func (o *RootOptions) loadConfig() (*config.ConfigType, error) {
	var args []string
	if o.ConfigPath != "" {
		args = append(args, "-c", o.ConfigPath)
	}
	cfg, err := config.NewConfig(args)
	if err != nil {
		return nil, err
	}
	if o.SQLitePath != "" {
		cfg.FastStore = config.FastStoreSQLite
		cfg.SQLitePath = o.SQLitePath
	}
	if o.FilePath != "" {
		cfg.DSN = ""
		cfg.FileStoragePath = o.FilePath
	}
	return cfg, nil
}

func (o *RootOptions) logger() *zap.SugaredLogger {
	if !o.Verbose {
		return zap.NewNop().Sugar()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// print выводит v как JSON или как строку text в зависимости от --format.
func (o *RootOptions) print(w io.Writer, v any, text string) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
