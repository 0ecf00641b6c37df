package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cashmind/engine/internal/daemon"
)

func init() {
	rootCmd.AddCommand(badgesCmd)
	rootCmd.AddCommand(levelCmd)
}

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List the badges you have earned",
	RunE:  runBadges,
}

func runBadges(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	badges, err := d.Badges.Badges(user)
	if err != nil {
		return err
	}

	if len(badges) == 0 {
		fmt.Println("No badges yet. Complete a challenge to earn your first.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BADGE\tNAME\tEARNED")
	for _, b := range badges {
		fmt.Fprintf(w, "%s %s\t%s\t%s\n", b.Icon, b.BadgeKey, b.Name, b.EarnedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

var levelCmd = &cobra.Command{
	Use:   "level",
	Short: "Show your level and XP progress",
	RunE:  runLevel,
}

func runLevel(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	info, err := d.Levels.UserLevel(user)
	if err != nil {
		return err
	}

	fmt.Printf("Level %d — %s\n", info.Level, info.Title)
	fmt.Printf("XP: %d / %d to next level\n", info.TotalXP, info.XPForNext)
	return nil
}
