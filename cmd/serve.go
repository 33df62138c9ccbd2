package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiscreen/internal/api"
	"github.com/abhisek/lexiscreen/internal/battery"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored results over a read-only HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.HTTPAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg, err := battery.Builtin()
		if err != nil {
			return err
		}
		d, err := openDeps(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		h := api.NewRouter(&api.Container{Results: d.results, Tests: reg, Log: log})
		return api.Serve(ctx, addr, h, log)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides LEXISCREEN_HTTP_ADDR, default :8080)")
}
