package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiscreen/internal/export"
	"github.com/abhisek/lexiscreen/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored results to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		test, _ := cmd.Flags().GetString("test")

		d, err := openDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		recs, err := d.listResults(cmd.Context(), store.QueryOpts{Test: test})
		if err != nil {
			return err
		}
		if err := export.WriteFile(out, recs); err != nil {
			return err
		}

		log.Info("results exported", "path", out, "count", len(recs))
		fmt.Printf("Exported %d results to %s\n", len(recs), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "lexiscreen-results.xlsx", "Output .xlsx file")
	exportCmd.Flags().String("test", "", "Only export results of this test")
}
