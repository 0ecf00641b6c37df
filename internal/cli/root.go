// Package cli implements the CashMind command-line interface using Cobra.
// Most subcommands operate on a single user, named with the global --user
// flag, against the local database — no server needs to be running.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var userFlag string

var rootCmd = &cobra.Command{
	Use:   "cashmind",
	Short: "CashMind — spending challenges, XP, and badges",
	Long: `CashMind is a personal-finance engine built around spending challenges.
Record transactions, accept challenges against spending categories, earn XP
and badges for staying under the limit, and track budgets and savings goals.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User id to act as")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// requireUser returns the --user value or an error when it is missing.
func requireUser() (string, error) {
	if userFlag == "" {
		return "", fmt.Errorf("--user is required")
	}
	return userFlag, nil
}
