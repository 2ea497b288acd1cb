package story

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/haven/core"
)

// Story categories
const (
	CategoryHealing  = "healing"
	CategoryHope     = "hope"
	CategoryGrowth   = "growth"
	CategoryBusiness = "business"

	// CategoryAll disables the category filter of the feed.
	CategoryAll = "all"
)

const anonymousAuthor = "Anonymous"

type Story struct {
	ID         string    `json:"id" db:"id"`
	AccountID  string    `json:"-" db:"account_id"`
	AuthorName string    `json:"-" db:"author_name"`
	Content    string    `json:"content" db:"content"`
	Category   string    `json:"category" db:"category"`
	Image      string    `json:"image" db:"image"`
	Anonymous  bool      `json:"anonymous" db:"anonymous"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"` // UTC
}

// Author is the name shown on the story: the author's full name, unless the story is anonymous.
func (s Story) Author() string {
	if s.Anonymous {
		return anonymousAuthor
	}
	return s.AuthorName
}

func (s Story) MarshalJSON() ([]byte, error) {
	type story Story
	return json.Marshal(struct {
		story
		Author string `json:"author"`
	}{
		story:  story(s),
		Author: s.Author(),
	})
}

type NewStory struct {
	Content   string `json:"content" validate:"required,notblank,max=10000"`
	Category  string `json:"category" validate:"required,oneof=healing hope growth business"`
	Image     string `json:"image" validate:"max=255"`
	Anonymous bool   `json:"anonymous"`
}

func (ns *NewStory) Validate(validate *validator.Validate) error {
	ns.Content = core.CleanString(ns.Content)
	ns.Category = core.CleanString(ns.Category, true /* lower */)
	ns.Image = core.CleanString(ns.Image)
	return validate.Struct(ns)
}
