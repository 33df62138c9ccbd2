package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiscreen/internal/battery"
)

var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "Browse the available screening tests",
}

var testsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tests (optionally filtered by family)",
	RunE: func(cmd *cobra.Command, args []string) error {
		family, _ := cmd.Flags().GetString("family")

		reg, err := battery.Builtin()
		if err != nil {
			return err
		}

		var tests []*battery.Battery
		if family != "" {
			tests = reg.Family(battery.Family(family))
			if len(tests) == 0 {
				return fmt.Errorf("no tests found for family %q", family)
			}
		} else {
			tests = reg.List()
		}

		fmt.Printf("%-18s  %-14s  %-10s  %9s  %5s  %s\n",
			"ID", "Family", "Age band", "Questions", "Timed", "Title")
		fmt.Println(strings.Repeat("─", 90))

		for _, b := range tests {
			timed := ""
			if b.Timed() {
				timed = "yes"
			}
			fmt.Printf("%-18s  %-14s  %-10s  %9d  %5s  %s\n",
				b.ID, b.Family, b.AgeBand, len(b.Questions), timed, b.Title)
		}

		fmt.Printf("\n%d tests\n", len(tests))
		return nil
	},
}

var testsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details for a single test",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := battery.Builtin()
		if err != nil {
			return err
		}
		b, err := reg.Get(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:          %s\n", b.ID)
		fmt.Printf("Title:       %s\n", b.Title)
		fmt.Printf("Family:      %s\n", b.Family)
		fmt.Printf("Age band:    %s\n", b.AgeBand)
		fmt.Printf("Questions:   %d\n", len(b.Questions))
		fmt.Printf("Time limits: easy %.0fs, medium %.0fs, hard %.0fs\n",
			b.Thresholds.Easy, b.Thresholds.Medium, b.Thresholds.Hard)
		if b.Description != "" {
			fmt.Printf("\n%s\n", b.Description)
		}

		counts := map[string]int{}
		for _, q := range b.Questions {
			counts[string(q.Difficulty)]++
		}
		fmt.Printf("\nDifficulty mix: %d easy, %d medium, %d hard\n",
			counts["easy"], counts["medium"], counts["hard"])
		return nil
	},
}

func init() {
	testsListCmd.Flags().String("family", "", "Filter by family (reading, phonological, memory, sequencing, spelling)")

	testsCmd.AddCommand(testsListCmd)
	testsCmd.AddCommand(testsShowCmd)
}
