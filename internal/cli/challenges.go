package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cashmind/engine/internal/daemon"
	"github.com/cashmind/engine/internal/domain"
)

func init() {
	challengesCmd.AddCommand(challengesListCmd)
	challengesCmd.AddCommand(challengesAcceptCmd)
	challengesCmd.AddCommand(challengesCompleteCmd)
	challengesCmd.AddCommand(challengesCancelCmd)
	rootCmd.AddCommand(challengesCmd)
}

var challengesCmd = &cobra.Command{
	Use:     "challenges",
	Aliases: []string{"ch"},
	Short:   "Accept, track, and finish spending challenges",
}

var challengesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your challenges grouped by state",
	RunE:    runChallengesList,
}

func runChallengesList(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	lists, err := d.Challenges.List(user)
	if err != nil {
		return err
	}

	total := len(lists.Active) + len(lists.Completed) + len(lists.Failed) + len(lists.Cancelled)
	if total == 0 {
		fmt.Println("No challenges yet. Run 'cashmind templates list' to browse the catalog.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tSPENT\tLIMIT\tDAYS LEFT\tXP")
	printChallengeRows(w, lists.Active)
	printChallengeRows(w, lists.Completed)
	printChallengeRows(w, lists.Failed)
	printChallengeRows(w, lists.Cancelled)
	return w.Flush()
}

func printChallengeRows(w *tabwriter.Writer, views []domain.ChallengeView) {
	for _, v := range views {
		status := string(v.Status)
		if v.FailureReason != "" {
			status = fmt.Sprintf("%s (%s)", status, v.FailureReason)
		}
		days := "-"
		if v.Status == domain.ChallengeActive {
			days = fmt.Sprintf("%d", v.DaysRemaining)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			v.ID, v.Title, status,
			v.Spent.StringFixed(2), v.LimitAmount.StringFixed(2),
			days, v.XPEarned,
		)
	}
}

var challengesAcceptCmd = &cobra.Command{
	Use:   "accept <template-id>",
	Short: "Accept a challenge from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runChallengesAccept,
}

func runChallengesAccept(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	c, err := d.Challenges.Accept(user, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Accepted challenge %s — ends %s\n", c.ID, c.EndsAt.Format("2006-01-02"))
	return nil
}

var challengesCompleteCmd = &cobra.Command{
	Use:   "complete <challenge-id>",
	Short: "Complete an active challenge and claim its XP",
	Args:  cobra.ExactArgs(1),
	RunE:  runChallengesComplete,
}

func runChallengesComplete(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	earned, err := d.Challenges.Complete(user, args[0])
	if err != nil {
		return err
	}

	fmt.Println("Challenge completed.")
	for _, name := range earned {
		fmt.Printf("  New badge: %s\n", name)
	}
	return nil
}

var challengesCancelCmd = &cobra.Command{
	Use:   "cancel <challenge-id>",
	Short: "Cancel an active challenge (no XP)",
	Args:  cobra.ExactArgs(1),
	RunE:  runChallengesCancel,
}

func runChallengesCancel(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Challenges.Cancel(user, args[0]); err != nil {
		return err
	}
	fmt.Println("Cancelled.")
	return nil
}
