package notification

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	journalEntryCreatedText = "You submitted a new journal entry."
	micrograntUpdatedFormat = "Your microgrant status has been updated to '%s'."
)

// Notification is an append-only message addressed to one account.
type Notification struct {
	ID        string    `json:"id" db:"id"`
	AccountID string    `json:"-" db:"account_id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

// HumanizeStatus turns a status value such as "under_review" into "Under Review".
func HumanizeStatus(status string) string {
	// a Caser is stateful: one per call
	return cases.Title(language.English).String(strings.ReplaceAll(status, "_", " "))
}
