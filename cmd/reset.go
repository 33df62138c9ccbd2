package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete stored test results",
	Long: "Delete stored test results. With --keep N the N most recent results are\n" +
		"kept and everything older is deleted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		keep, _ := cmd.Flags().GetInt("keep")
		if keep < 0 {
			return fmt.Errorf("--keep must not be negative")
		}

		if !yes {
			prompt := "Delete all stored test results? [y/N] "
			if keep > 0 {
				prompt = fmt.Sprintf("Delete all but the %d most recent results? [y/N] ", keep)
			}
			fmt.Print(prompt)
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Println("Nothing deleted.")
				return nil
			}
		}

		d, err := openDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		if keep > 0 {
			if err := d.results.Prune(cmd.Context(), keep); err != nil {
				return fmt.Errorf("prune results: %w", err)
			}
			log.Info("results pruned", "keep", keep)
			fmt.Printf("Kept the %d most recent results.\n", keep)
			return nil
		}

		n, err := d.results.Clear(cmd.Context())
		if err != nil {
			return fmt.Errorf("clear results: %w", err)
		}
		log.Info("results cleared", "count", n)
		fmt.Printf("Deleted %d results.\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	resetCmd.Flags().Int("keep", 0, "Keep this many of the most recent results (0 = delete all)")
}
