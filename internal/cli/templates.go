package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cashmind/engine/internal/daemon"
	"github.com/cashmind/engine/internal/domain"
)

func init() {
	templatesAddCmd.Flags().StringVar(&tmplTitle, "title", "", "Challenge title")
	templatesAddCmd.Flags().StringVar(&tmplDescription, "description", "", "Challenge description")
	templatesAddCmd.Flags().StringVar(&tmplDifficulty, "difficulty", "EASY", "EASY, MEDIUM, or HARD")
	templatesAddCmd.Flags().Int64Var(&tmplXP, "xp", 50, "XP awarded on completion")
	templatesAddCmd.Flags().StringVar(&tmplCategory, "category", "", "Spending category")
	templatesAddCmd.Flags().StringVar(&tmplLimit, "limit", "0", "Spending limit for the duration")
	templatesAddCmd.Flags().IntVar(&tmplDays, "days", 7, "Duration in days")
	templatesAddCmd.Flags().BoolVar(&tmplRecommended, "recommended", false, "Surface at the top of the catalog")

	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesAddCmd)
	rootCmd.AddCommand(templatesCmd)
}

var (
	tmplTitle       string
	tmplDescription string
	tmplDifficulty  string
	tmplXP          int64
	tmplCategory    string
	tmplLimit       string
	tmplDays        int
	tmplRecommended bool
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Browse and maintain the challenge catalog",
}

var templatesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the challenge catalog",
	RunE:    runTemplatesList,
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	templates, err := d.Challenges.Templates()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDIFFICULTY\tCATEGORY\tLIMIT\tDAYS\tXP")
	for _, t := range templates {
		marker := ""
		if t.IsRecommended {
			marker = " *"
		}
		fmt.Fprintf(w, "%s\t%s%s\t%s\t%s\t%s\t%d\t%d\n",
			t.ID, t.Title, marker, t.Difficulty, t.Category,
			t.LimitAmount.StringFixed(2), t.DurationDays, t.XPReward,
		)
	}
	return w.Flush()
}

var templatesAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add or update a catalog template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesAdd,
}

func runTemplatesAdd(cmd *cobra.Command, args []string) error {
	if tmplTitle == "" || tmplCategory == "" {
		return fmt.Errorf("--title and --category are required")
	}

	difficulty := domain.Difficulty(tmplDifficulty)
	switch difficulty {
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
	default:
		return fmt.Errorf("difficulty must be EASY, MEDIUM, or HARD")
	}

	limit, err := decimal.NewFromString(tmplLimit)
	if err != nil || limit.IsNegative() {
		return fmt.Errorf("--limit must be a non-negative amount")
	}
	if tmplDays <= 0 {
		return fmt.Errorf("--days must be positive")
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	t := domain.ChallengeTemplate{
		ID:            args[0],
		Title:         tmplTitle,
		Description:   tmplDescription,
		Difficulty:    difficulty,
		XPReward:      tmplXP,
		Category:      tmplCategory,
		LimitAmount:   limit,
		DurationDays:  tmplDays,
		IsRecommended: tmplRecommended,
	}
	if err := d.DB.UpsertTemplate(t); err != nil {
		return err
	}

	fmt.Printf("Template %s saved.\n", t.ID)
	return nil
}
