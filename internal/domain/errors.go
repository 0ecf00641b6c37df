package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. The API boundary
// maps them to HTTP statuses; the messages are the strings users see.

var (
	// Auth
	ErrNotAuthenticated = errors.New("Not authenticated")

	// Lookups. A row owned by a different user is reported as not found,
	// never as forbidden — ownership is not leaked.
	ErrTemplateNotFound    = errors.New("challenge template not found")
	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrGoalNotFound        = errors.New("savings goal not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrBudgetNotFound      = errors.New("budget not found")
)

// PreconditionError reports a business-rule violation: the operation had no
// effect and the caller may retry after changing state. Reason is the
// display string.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return e.Reason }

// Precondition builds a PreconditionError with the given display reason.
func Precondition(reason string) error {
	return &PreconditionError{Reason: reason}
}

// IsPrecondition reports whether err is a business-rule violation.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// Fixed precondition reasons used by the challenge lifecycle.
const (
	ReasonAlreadyActive      = "challenge already active for this template"
	ReasonCategoryOccupied   = "category already has an active challenge"
	ReasonNotActive          = "challenge is not active"
	ReasonOverLimit          = "exceeded spending limit, cannot complete"
	ReasonContributeNegative = "contribution would make the saved amount negative"
)
