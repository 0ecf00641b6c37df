package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cashmind/engine/internal/app/simulate"
)

func init() {
	simulateCmd.PersistentFlags().StringVar(&simPrincipal, "principal", "0", "Starting amount")
	simulateCmd.PersistentFlags().StringVar(&simMonthly, "monthly", "0", "Monthly contribution")
	simulateCmd.PersistentFlags().StringVar(&simRate, "rate", "5", "Annual return rate in percent")
	simulateCmd.PersistentFlags().IntVar(&simMonths, "months", 12, "Horizon in months")
	simulateTimelineCmd.Flags().StringVar(&simTarget, "target", "", "Target amount to reach")

	simulateCmd.AddCommand(simulateProjectionCmd)
	simulateCmd.AddCommand(simulateTradeOffCmd)
	simulateCmd.AddCommand(simulateTimelineCmd)
	rootCmd.AddCommand(simulateCmd)
}

var (
	simPrincipal string
	simMonthly   string
	simRate      string
	simMonths    int
	simTarget    string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Project savings growth with compound interest",
}

func simArgs() (principal, monthly, rate decimal.Decimal, err error) {
	if principal, err = decimal.NewFromString(simPrincipal); err != nil {
		return principal, monthly, rate, fmt.Errorf("--principal must be a number")
	}
	if monthly, err = decimal.NewFromString(simMonthly); err != nil {
		return principal, monthly, rate, fmt.Errorf("--monthly must be a number")
	}
	if rate, err = decimal.NewFromString(simRate); err != nil {
		return principal, monthly, rate, fmt.Errorf("--rate must be a number")
	}
	return principal, monthly, rate, nil
}

var simulateProjectionCmd = &cobra.Command{
	Use:   "projection",
	Short: "Project a balance forward",
	RunE:  runSimulateProjection,
}

func runSimulateProjection(cmd *cobra.Command, args []string) error {
	principal, monthly, rate, err := simArgs()
	if err != nil {
		return err
	}
	if simMonths < 0 || simMonths > 1200 {
		return fmt.Errorf("--months must be between 0 and 1200")
	}

	value := simulate.Project(principal, monthly, rate, simMonths)
	fmt.Printf("After %d months: %s\n", simMonths, value.StringFixed(2))
	return nil
}

var simulateTradeOffCmd = &cobra.Command{
	Use:   "tradeoff",
	Short: "Compare investing a monthly saving against stockpiling it",
	RunE:  runSimulateTradeOff,
}

func runSimulateTradeOff(cmd *cobra.Command, args []string) error {
	_, monthly, rate, err := simArgs()
	if err != nil {
		return err
	}
	if simMonths < 0 || simMonths > 1200 {
		return fmt.Errorf("--months must be between 0 and 1200")
	}

	result := simulate.TradeOff(monthly, rate, simMonths)
	fmt.Printf("Invested:   %s\n", result.Invested.StringFixed(2))
	fmt.Printf("Stockpiled: %s\n", result.Stockpiled.StringFixed(2))
	fmt.Printf("Difference: %s\n", result.Delta.StringFixed(2))
	return nil
}

var simulateTimelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Estimate months until a target amount is reached",
	RunE:  runSimulateTimeline,
}

func runSimulateTimeline(cmd *cobra.Command, args []string) error {
	principal, monthly, rate, err := simArgs()
	if err != nil {
		return err
	}
	if simTarget == "" {
		return fmt.Errorf("--target is required")
	}
	target, err := decimal.NewFromString(simTarget)
	if err != nil {
		return fmt.Errorf("--target must be a number")
	}

	months := simulate.MonthsToTarget(principal, monthly, rate, target)
	switch {
	case months == 0:
		fmt.Println("Already there.")
	case months < 0:
		fmt.Println("Target is not reachable with these inputs.")
	default:
		fmt.Printf("Roughly %d months (%.1f years)\n", months, float64(months)/12)
	}
	return nil
}
