package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cashmind/engine/internal/app/split"
)

func init() {
	splitCmd.Flags().IntVarP(&splitCount, "count", "n", 0, "Number of even participants")
	splitCmd.Flags().Int64SliceVar(&splitShares, "shares", nil, "Proportional share weights (overrides --count)")
	rootCmd.AddCommand(splitCmd)
}

var (
	splitCount  int
	splitShares []int64
)

var splitCmd = &cobra.Command{
	Use:   "split <total>",
	Short: "Split a bill into cent-exact parts",
	Args:  cobra.ExactArgs(1),
	RunE:  runSplit,
}

func runSplit(cmd *cobra.Command, args []string) error {
	total, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("total must be a number")
	}

	var parts []decimal.Decimal
	if len(splitShares) > 0 {
		parts, err = split.ByShares(total, splitShares)
	} else {
		parts, err = split.Even(total, splitCount)
	}
	if err != nil {
		return err
	}

	for i, p := range parts {
		fmt.Printf("Participant %d: %s\n", i+1, p.StringFixed(2))
	}
	return nil
}
