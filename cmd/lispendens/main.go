// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the lispendens CLI, a terminal
// portal for the Lis Pendens property-litigation search service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lispendens/internal/logging"
	"github.com/pdiddy/lispendens/internal/secrets"
	"github.com/pdiddy/lispendens/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the resolved configuration, loaded before every command.
	cfg types.PortalConfig

	// logger writes diagnostics to stderr.
	logger = slog.Default()
)

// rootCmd is the base command for the lispendens CLI.
var rootCmd = &cobra.Command{
	Use:   "lispendens",
	Short: "Search property titles for pending litigation",
	Long: `lispendens is a terminal portal for the Lis Pendens search service.

Sign in, submit a property search, pay for it, and view or download the
one result your payment covers. Session state is kept in a local storage
database between commands, the way a browser keeps it between pages.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		logger = logging.New(c.Logging, os.Stderr)

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "names", keys)
		}
		secrets.Apply(&c.Payment, s)
		finishPaymentConfig(&c.Payment)
		cfg = c
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./lispendens.yaml or ~/.config/lispendens/lispendens.yaml)")
	pf.String("api-url", "", "backend API root")
	pf.String("storage", "", "session storage database")
	pf.String("log-level", "", "diagnostic log level: debug, info, warn, error")

	viper.BindPFlag("api.base_url", pf.Lookup("api-url"))
	viper.BindPFlag("storage.path", pf.Lookup("storage"))
	viper.BindPFlag("logging.level", pf.Lookup("log-level"))
}

func initConfig() {
	setDefaults(viper.GetViper())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lispendens")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lispendens"))
		}
	}

	viper.SetEnvPrefix("LISPENDENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", userMessage(err))
		os.Exit(1)
	}
}
