// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the brief-engine CLI.
// Implements: prd001-trends, prd003-generation, prd004-subscriptions,
//             prd006-scheduling, prd007-http-api (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/brief-engine/internal/generate"
	"github.com/pdiddy/brief-engine/internal/logging"
	"github.com/pdiddy/brief-engine/internal/secrets"
	"github.com/pdiddy/brief-engine/internal/store"
	"github.com/pdiddy/brief-engine/internal/trends"
	"github.com/pdiddy/brief-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the brief-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "brief-engine",
	Short: "Intelligence reports for a domain and role, on demand and weekly",
	Long: `brief-engine turns recent news and a locally hosted text-generation
engine into structured intelligence reports for a (domain, role) pair.

The serve command exposes the report API over HTTP and runs the weekly
email scheduler for subscribers. The brief command prints a one-shot
report to stdout; subscribe and subscribers manage the subscription
store from the command line.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env file may carry BRIEF_ENGINE_* variables; real environment
		// values win over file values.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		logging.Init(viper.GetString("log.level"), viper.GetString("log.format"), os.Stderr)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./brief-engine.yaml or ~/.config/brief-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("brief-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "brief-engine"))
		}
	}

	viper.SetEnvPrefix("BRIEF_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.addr", ":8000")
	viper.SetDefault("trends.provider", "newsapi")
	viper.SetDefault("trends.article_count", trends.DefaultArticleCount)
	viper.SetDefault("trends.timeout", "10s")
	viper.SetDefault("trends.max_retries", 3)
	viper.SetDefault("generator.binary", generate.DefaultBinary)
	viper.SetDefault("generator.model", generate.DefaultModel)
	viper.SetDefault("generator.timeout", "180s")
	viper.SetDefault("store.path", store.DefaultPath)
	viper.SetDefault("mail.host", "smtp.gmail.com")
	viper.SetDefault("mail.port", 587)
	viper.SetDefault("schedule.interval", "168h")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// resolveConfig assembles the runtime configuration from defaults, the
// config file, the environment, and loaded secrets.
func resolveConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}

	cfg.Trends.APIKey = secretDefault("newsapi-api-key", cfg.Trends.APIKey)
	cfg.Mail.Password = secretDefault("smtp-password", cfg.Mail.Password)
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.Username
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
