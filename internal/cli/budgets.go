package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cashmind/engine/internal/daemon"
	"github.com/cashmind/engine/internal/domain"
)

func init() {
	budgetsListCmd.Flags().StringVar(&budgetMonth, "month", "", "Month (2006-01, default current)")
	budgetsSetCmd.Flags().StringVar(&budgetMonth, "month", "", "Month (2006-01, default current)")

	budgetsCmd.AddCommand(budgetsListCmd)
	budgetsCmd.AddCommand(budgetsSetCmd)
	budgetsCmd.AddCommand(budgetsRmCmd)
	rootCmd.AddCommand(budgetsCmd)
}

var budgetMonth string

var budgetsCmd = &cobra.Command{
	Use:   "budgets",
	Short: "Set monthly category budgets and track them",
}

var budgetsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List budgets for a month with live spending",
	RunE:    runBudgetsList,
}

func runBudgetsList(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	month := budgetMonth
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	summaries, err := d.Spender.BudgetSummaries(user, month)
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		fmt.Printf("No budgets for %s.\n", month)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tLIMIT\tSPENT\tREMAINING\tUSED")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d%%\n",
			s.ID, s.Category, s.Limit.StringFixed(2),
			s.Spent.StringFixed(2), s.Remaining.StringFixed(2), s.ConsumedPercent,
		)
	}
	return w.Flush()
}

var budgetsSetCmd = &cobra.Command{
	Use:   "set <category> <limit>",
	Short: "Create or update a category budget for a month",
	Args:  cobra.ExactArgs(2),
	RunE:  runBudgetsSet,
}

func runBudgetsSet(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	limit, err := decimal.NewFromString(args[1])
	if err != nil || limit.IsNegative() {
		return fmt.Errorf("limit must be a non-negative amount")
	}

	month := budgetMonth
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		return fmt.Errorf("--month must look like 2006-01")
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	b := domain.Budget{
		ID:       uuid.New().String(),
		UserID:   user,
		Category: args[0],
		Limit:    limit,
		Month:    month,
	}
	if err := d.DB.UpsertBudget(b); err != nil {
		return err
	}

	fmt.Printf("Budget for %s in %s set to %s\n", b.Category, b.Month, limit.StringFixed(2))
	return nil
}

var budgetsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsRm,
}

func runBudgetsRm(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.DB.DeleteBudget(user, args[0]); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}
