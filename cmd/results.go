package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiscreen/internal/record"
	"github.com/abhisek/lexiscreen/internal/report"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show the most recent test result",
	RunE: func(cmd *cobra.Command, args []string) error {
		test, _ := cmd.Flags().GetString("test")

		d, err := openDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		rec, err := d.results.Latest(cmd.Context(), test)
		if errors.Is(err, record.ErrMalformed) {
			log.Warn("stored result unreadable", "test", test, "error", err)
			rec, err = nil, nil
		}
		if err != nil {
			return fmt.Errorf("load result: %w", err)
		}

		fmt.Println(report.Render(rec, terminalWidth()))
		return nil
	},
}

func init() {
	resultsCmd.Flags().String("test", "", "Only consider results of this test")
}
