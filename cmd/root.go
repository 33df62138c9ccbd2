package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiscreen/internal/app"
	"github.com/abhisek/lexiscreen/internal/battery"
	"github.com/abhisek/lexiscreen/internal/config"
	"github.com/abhisek/lexiscreen/internal/logger"
	"github.com/abhisek/lexiscreen/internal/screens"
	"github.com/abhisek/lexiscreen/internal/timing"
)

var rootCmd = &cobra.Command{
	Use:   "lexiscreen",
	Short: "Dyslexia screening tests for the terminal",
	Long: "Lexiscreen runs short reading, phonological, memory, sequencing and spelling\n" +
		"screening tests and estimates a dyslexia risk level from accuracy and response time.\n" +
		"It is a screening aid, not a diagnosis.\n\n" +
		"Run without a subcommand to open the interactive menu.",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tests, err := battery.Builtin()
		if err != nil {
			return fmt.Errorf("load tests: %w", err)
		}

		d, err := openDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		return app.Run(screens.Deps{
			Tests:   tests,
			Results: d.results,
			Events:  d.store.EventRepo(),
			Log:     log,
			Clock:   timing.SystemClock{},
		})
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

var (
	cfg *config.Config
	log *logger.Logger
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides LEXISCREEN_DB env var)")
	pf.String("redis", "", "Redis address to mirror results to (overrides LEXISCREEN_REDIS_ADDR)")
	pf.String("log-mode", "", "Log mode: quiet, dev or prod (overrides LEXISCREEN_LOG_MODE)")
	pf.String("env-file", ".env", "Load environment variables from this file if it exists")

	rootCmd.AddCommand(testsCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup resolves configuration from the .env file, the environment and
// flags, in increasing priority, and builds the logger.
func setup(cmd *cobra.Command) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	c, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		c.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("redis"); v != "" {
		c.RedisAddr = v
	}
	if v, _ := cmd.Flags().GetString("log-mode"); v != "" {
		c.LogMode = v
	}

	l, err := logger.New(c.LogMode)
	if err != nil {
		return err
	}
	cfg, log = c, l
	return nil
}
