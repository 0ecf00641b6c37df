package sqlite

import (
	"github.com/shopspring/decimal"

	"github.com/cashmind/engine/internal/domain"
)

// starterTemplates is the built-in challenge catalog. Seeding upserts by id,
// so operator edits via the CLI survive restarts for custom templates while
// the built-ins stay current.
var starterTemplates = []domain.ChallengeTemplate{
	{
		ID:            "no-coffee-week",
		Title:         "Skip the Coffee Run",
		Description:   "Keep café spending under $10 for a week.",
		Difficulty:    domain.DifficultyEasy,
		XPReward:      50,
		Category:      "coffee",
		LimitAmount:   decimal.NewFromInt(10),
		DurationDays:  7,
		IsRecommended: true,
	},
	{
		ID:            "lunch-prep-week",
		Title:         "Pack Your Lunch",
		Description:   "Spend less than $25 on eating out this week.",
		Difficulty:    domain.DifficultyEasy,
		XPReward:      50,
		Category:      "dining",
		LimitAmount:   decimal.NewFromInt(25),
		DurationDays:  7,
		IsRecommended: true,
	},
	{
		ID:            "no-impulse-buys",
		Title:         "Impulse Freeze",
		Description:   "Keep shopping purchases under $50 for two weeks.",
		Difficulty:    domain.DifficultyMedium,
		XPReward:      120,
		Category:      "shopping",
		LimitAmount:   decimal.NewFromInt(50),
		DurationDays:  14,
		IsRecommended: true,
	},
	{
		ID:            "transit-only",
		Title:         "Transit Only",
		Description:   "Spend under $30 on rideshares and taxis this month.",
		Difficulty:    domain.DifficultyMedium,
		XPReward:      150,
		Category:      "transport",
		LimitAmount:   decimal.NewFromInt(30),
		DurationDays:  30,
		IsRecommended: false,
	},
	{
		ID:            "entertainment-diet",
		Title:         "Entertainment Diet",
		Description:   "Hold entertainment spending under $40 for a month.",
		Difficulty:    domain.DifficultyHard,
		XPReward:      250,
		Category:      "entertainment",
		LimitAmount:   decimal.NewFromInt(40),
		DurationDays:  30,
		IsRecommended: false,
	},
	{
		ID:            "zero-takeout-month",
		Title:         "Takeout Blackout",
		Description:   "No delivery at all for a month. Every dollar counts.",
		Difficulty:    domain.DifficultyHard,
		XPReward:      300,
		Category:      "delivery",
		LimitAmount:   decimal.Zero,
		DurationDays:  30,
		IsRecommended: false,
	},
}

// SeedTemplates upserts the starter challenge catalog.
func (d *DB) SeedTemplates() error {
	for _, t := range starterTemplates {
		if err := d.UpsertTemplate(t); err != nil {
			return err
		}
	}
	return nil
}
