package healing

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/haven/core"
)

// Support post categories
const (
	CategoryHealing = "healing"
	CategoryGrowth  = "growth"
	CategoryTrauma  = "trauma"
	CategoryTips    = "tips"
)

type MoodCheckIn struct {
	ID        string    `json:"id" db:"id"`
	AccountID string    `json:"-" db:"account_id"`
	Mood      string    `json:"mood" db:"mood"`
	Timestamp time.Time `json:"timestamp" db:"created_at"` // UTC
}

type JournalEntry struct {
	ID        string    `json:"id" db:"id"`
	AccountID string    `json:"-" db:"account_id"`
	Content   string    `json:"content" db:"content"`
	Anonymous bool      `json:"anonymous" db:"anonymous"`
	Timestamp time.Time `json:"timestamp" db:"created_at"` // UTC
}

type SupportPost struct {
	ID        string         `json:"id" db:"id"`
	AccountID string         `json:"-" db:"account_id"`
	Content   string         `json:"content" db:"content"`
	Anonymous bool           `json:"anonymous" db:"anonymous"`
	Category  string         `json:"category" db:"category"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"` // UTC
	Replies   []SupportReply `json:"replies" db:"-"`
}

type SupportReply struct {
	ID        string    `json:"id" db:"id"`
	PostID    string    `json:"post_id" db:"post_id"`
	AccountID string    `json:"-" db:"account_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

type NewMoodCheckIn struct {
	Mood string `json:"mood" validate:"required,notblank,max=50"`
}

func (nm *NewMoodCheckIn) Validate(validate *validator.Validate) error {
	nm.Mood = core.CleanString(nm.Mood)
	return validate.Struct(nm)
}

type NewJournalEntry struct {
	Content   string `json:"content" validate:"required,notblank,max=10000"`
	Anonymous bool   `json:"anonymous"`
}

func (nj *NewJournalEntry) Validate(validate *validator.Validate) error {
	nj.Content = core.CleanString(nj.Content)
	return validate.Struct(nj)
}

type NewSupportPost struct {
	Content   string `json:"content" validate:"required,notblank,max=5000"`
	Anonymous *bool  `json:"anonymous"` // defaults to true
	Category  string `json:"category" validate:"required,oneof=healing growth trauma tips"`
}

func (np *NewSupportPost) Validate(validate *validator.Validate) error {
	np.Content = core.CleanString(np.Content)
	np.Category = core.CleanString(np.Category, true /* lower */)
	return validate.Struct(np)
}

type NewSupportReply struct {
	Content string `json:"content" validate:"required,notblank,max=5000"`
}

func (nr *NewSupportReply) Validate(validate *validator.Validate) error {
	nr.Content = core.CleanString(nr.Content)
	return validate.Struct(nr)
}
