package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/abhisek/lexiscreen/internal/battery"
	"github.com/abhisek/lexiscreen/internal/report"
	"github.com/abhisek/lexiscreen/internal/runner"
)

var takeCmd = &cobra.Command{
	Use:   "take [test-id]",
	Short: "Take a screening test",
	Long: "Take a screening test interactively. Pick a built-in test with --test (see\n" +
		"'lexiscreen tests list') or load your own definition with --file.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("test")
		file, _ := cmd.Flags().GetString("file")
		if id == "" && len(args) == 1 {
			id = args[0]
		}

		b, err := resolveBattery(id, file)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		d, err := openDeps(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		width := terminalWidth()
		r := runner.New(runner.Options{
			In:      os.Stdin,
			Out:     os.Stdout,
			Results: d.results,
			Events:  d.store.EventRepo(),
			Log:     log,
			Width:   width - 4,
		})
		defer r.Close()

		rec, err := r.Run(ctx, b)
		if errors.Is(err, context.Canceled) || errors.Is(err, runner.ErrInputClosed) {
			fmt.Println("\nTest abandoned. Nothing was saved.")
			return nil
		}
		if rec == nil {
			return err
		}

		fmt.Println()
		fmt.Println(report.Render(rec, width))
		return err
	},
}

func init() {
	takeCmd.Flags().String("test", "", "ID of a built-in test")
	takeCmd.Flags().String("file", "", "Path to a YAML test definition")
	takeCmd.MarkFlagsMutuallyExclusive("test", "file")
}

func resolveBattery(id, file string) (*battery.Battery, error) {
	if file != "" {
		return battery.Load(file)
	}
	if id == "" {
		return nil, fmt.Errorf("choose a test with --test or --file (see 'lexiscreen tests list')")
	}
	reg, err := battery.Builtin()
	if err != nil {
		return nil, err
	}
	return reg.Get(id)
}

// terminalWidth returns the stdout width, capped for readability.
func terminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 {
		return report.DefaultWidth
	}
	return min(w, 100)
}
