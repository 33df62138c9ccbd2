package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiscreen/internal/report"
	"github.com/abhisek/lexiscreen/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past test results",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		test, _ := cmd.Flags().GetString("test")
		if limit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}

		d, err := openDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		recs, err := d.listResults(cmd.Context(), store.QueryOpts{Test: test, Limit: limit})
		if err != nil {
			return err
		}

		fmt.Print(report.RenderHistory(recs))
		if len(recs) > 0 {
			fmt.Printf("\n%d results\n", len(recs))
		} else {
			fmt.Println()
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of results (0 = all)")
	historyCmd.Flags().String("test", "", "Only list results of this test")
}
