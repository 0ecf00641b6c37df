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
	"github.com/cashmind/engine/internal/infra/sqlite"
)

func init() {
	txAddCmd.Flags().StringVar(&txType, "type", "expense", "income or expense")
	txAddCmd.Flags().StringVar(&txCategory, "category", "", "Spending category")
	txAddCmd.Flags().StringVar(&txNote, "note", "", "Free-form note")
	txAddCmd.Flags().StringVar(&txDate, "date", "", "Date (2006-01-02, default today)")

	txListCmd.Flags().StringVar(&txType, "type", "", "Filter by type")
	txListCmd.Flags().StringVar(&txCategory, "category", "", "Filter by category")
	txListCmd.Flags().StringVar(&txFrom, "from", "", "From date (2006-01-02)")
	txListCmd.Flags().StringVar(&txTo, "to", "", "To date (2006-01-02)")

	spendingCmd.Flags().StringVar(&txFrom, "from", "", "From date (2006-01-02)")
	spendingCmd.Flags().StringVar(&txTo, "to", "", "To date (2006-01-02)")

	txCmd.AddCommand(txAddCmd)
	txCmd.AddCommand(txListCmd)
	txCmd.AddCommand(txRmCmd)
	rootCmd.AddCommand(txCmd)
	rootCmd.AddCommand(spendingCmd)
}

var (
	txType     string
	txCategory string
	txNote     string
	txDate     string
	txFrom     string
	txTo       string
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Record and list transactions",
}

var txAddCmd = &cobra.Command{
	Use:   "add <amount>",
	Short: "Record a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxAdd,
}

func runTxAdd(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	amount, err := decimal.NewFromString(args[0])
	if err != nil || !amount.IsPositive() {
		return fmt.Errorf("amount must be a positive number")
	}

	typ := domain.TransactionType(txType)
	if typ != domain.TransactionIncome && typ != domain.TransactionExpense {
		return fmt.Errorf("--type must be income or expense")
	}
	if txCategory == "" {
		return fmt.Errorf("--category is required")
	}

	date := time.Now()
	if txDate != "" {
		date, err = time.Parse("2006-01-02", txDate)
		if err != nil {
			return fmt.Errorf("--date must look like 2006-01-02")
		}
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	t := domain.Transaction{
		ID:       uuid.New().String(),
		UserID:   user,
		Type:     typ,
		Category: txCategory,
		Amount:   amount,
		Note:     txNote,
		Date:     date,
	}
	if err := d.DB.InsertTransaction(t); err != nil {
		return err
	}

	fmt.Printf("Recorded %s %s in %s (%s)\n", typ, amount.StringFixed(2), txCategory, t.ID)
	return nil
}

var txListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List transactions, newest first",
	RunE:    runTxList,
}

func runTxList(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	filter := sqlite.TxFilter{
		Type:     domain.TransactionType(txType),
		Category: txCategory,
	}
	if txFrom != "" {
		if filter.From, err = time.Parse("2006-01-02", txFrom); err != nil {
			return fmt.Errorf("--from must look like 2006-01-02")
		}
	}
	if txTo != "" {
		if filter.To, err = time.Parse("2006-01-02", txTo); err != nil {
			return fmt.Errorf("--to must look like 2006-01-02")
		}
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	txs, err := d.DB.ListTransactions(user, filter)
	if err != nil {
		return err
	}

	if len(txs) == 0 {
		fmt.Println("No transactions.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tNOTE")
	for _, t := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date.Format("2006-01-02"), t.Type, t.Category,
			t.Amount.StringFixed(2), t.Note,
		)
	}
	return w.Flush()
}

var txRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxRm,
}

func runTxRm(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.DB.DeleteTransaction(user, args[0]); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

var spendingCmd = &cobra.Command{
	Use:   "spending",
	Short: "Show expense totals per category",
	RunE:  runSpending,
}

func runSpending(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	var from, to time.Time
	if txFrom != "" {
		if from, err = time.Parse("2006-01-02", txFrom); err != nil {
			return fmt.Errorf("--from must look like 2006-01-02")
		}
	}
	if txTo != "" {
		if to, err = time.Parse("2006-01-02", txTo); err != nil {
			return fmt.Errorf("--to must look like 2006-01-02")
		}
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	totals, err := d.Spender.CategoryTotals(user, from, to)
	if err != nil {
		return err
	}

	if len(totals) == 0 {
		fmt.Println("No expenses in range.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tTOTAL")
	for _, ct := range totals {
		fmt.Fprintf(w, "%s\t%s\n", ct.Category, ct.Total.StringFixed(2))
	}
	return w.Flush()
}
