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
	goalsAddCmd.Flags().StringVar(&goalDeadline, "deadline", "", "Deadline (2006-01-02, optional)")

	goalsCmd.AddCommand(goalsListCmd)
	goalsCmd.AddCommand(goalsAddCmd)
	goalsCmd.AddCommand(goalsContributeCmd)
	goalsCmd.AddCommand(goalsRmCmd)
	rootCmd.AddCommand(goalsCmd)
}

var goalDeadline string

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Track savings goals",
}

var goalsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List savings goals",
	RunE:    runGoalsList,
}

func runGoalsList(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	goals, err := d.DB.ListGoals(user)
	if err != nil {
		return err
	}

	if len(goals) == 0 {
		fmt.Println("No goals yet. Run 'cashmind goals add' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSAVED\tTARGET\tPROGRESS\tDEADLINE")
	for _, g := range goals {
		deadline := "-"
		if g.Deadline != nil {
			deadline = g.Deadline.Format("2006-01-02")
		}
		progress := fmt.Sprintf("%d%%", g.ProgressPercent())
		if g.Reached() {
			progress += " ✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			g.ID, g.Name, g.Saved.StringFixed(2), g.Target.StringFixed(2),
			progress, deadline,
		)
	}
	return w.Flush()
}

var goalsAddCmd = &cobra.Command{
	Use:   "add <name> <target>",
	Short: "Create a savings goal",
	Args:  cobra.ExactArgs(2),
	RunE:  runGoalsAdd,
}

func runGoalsAdd(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	target, err := decimal.NewFromString(args[1])
	if err != nil || !target.IsPositive() {
		return fmt.Errorf("target must be a positive amount")
	}

	g := domain.Goal{
		ID:     uuid.New().String(),
		UserID: user,
		Name:   args[0],
		Target: target,
		Saved:  decimal.Zero,
	}
	if goalDeadline != "" {
		deadline, err := time.Parse("2006-01-02", goalDeadline)
		if err != nil {
			return fmt.Errorf("--deadline must look like 2006-01-02")
		}
		g.Deadline = &deadline
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.DB.InsertGoal(g); err != nil {
		return err
	}

	fmt.Printf("Goal %q created (%s)\n", g.Name, g.ID)
	return nil
}

var goalsContributeCmd = &cobra.Command{
	Use:   "contribute <id> <amount>",
	Short: "Add to a goal (negative amounts withdraw)",
	Args:  cobra.ExactArgs(2),
	RunE:  runGoalsContribute,
}

func runGoalsContribute(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("amount must be a number")
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	g, err := d.DB.GetGoal(user, args[0])
	if err != nil {
		return err
	}
	if g == nil {
		return domain.ErrGoalNotFound
	}

	saved := g.Saved.Add(amount)
	if saved.IsNegative() {
		return domain.Precondition(domain.ReasonContributeNegative)
	}
	if err := d.DB.UpdateGoalSaved(user, g.ID, saved.String()); err != nil {
		return err
	}

	fmt.Printf("%s: %s / %s saved\n", g.Name, saved.StringFixed(2), g.Target.StringFixed(2))
	if saved.GreaterThanOrEqual(g.Target) {
		fmt.Println("Goal reached! 🎉")
	}
	return nil
}

var goalsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalsRm,
}

func runGoalsRm(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.DB.DeleteGoal(user, args[0]); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}
