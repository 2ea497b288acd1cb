package microgrant

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/haven/core"
)

type Status string

// Statuses
const (
	StatusUnderReview    Status = "under_review"
	StatusAdditionalInfo Status = "additional_info"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
	StatusFunded         Status = "funded"
)

var (
	statusLabels = map[Status]string{
		StatusUnderReview:    "Under Review",
		StatusAdditionalInfo: "Needs More Info",
		StatusApproved:       "Approved",
		StatusRejected:       "Rejected",
		StatusFunded:         "Funded",
	}

	statusProgress = map[Status]int{
		StatusUnderReview:    25,
		StatusAdditionalInfo: 50,
		StatusApproved:       75,
		StatusFunded:         100,
		StatusRejected:       100,
	}
)

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the display name of the status; unknown statuses are returned as is.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ProgressPercent tells how far along the review process the status is; 0 for unknown statuses.
func (s Status) ProgressPercent() int {
	return statusProgress[s]
}

type Application struct {
	ID                     string    `json:"id" db:"id"`
	AccountID              string    `json:"-" db:"account_id"`
	FullName               string    `json:"full_name" db:"full_name"`
	Location               string    `json:"location" db:"location"`
	BusinessName           string    `json:"business_name" db:"business_name"`
	BusinessDescription    string    `json:"business_description" db:"business_description"`
	GrantAmount            float64   `json:"grant_amount" db:"grant_amount"`
	BudgetBreakdown        string    `json:"budget_breakdown" db:"budget_breakdown"`
	Status                 Status    `json:"status" db:"status"`
	AdditionalInfoRequired string    `json:"additional_info_required" db:"additional_info_required"`
	AdditionalInfoResponse string    `json:"additional_info_response" db:"additional_info_response"`
	SubmittedAt            time.Time `json:"submission_date" db:"submitted_at"` // UTC
	UpdatedAt              time.Time `json:"last_updated" db:"updated_at"`      // UTC
}

// MarshalJSON adds the status label and progress to the application fields.
func (a Application) MarshalJSON() ([]byte, error) {
	type application Application
	return json.Marshal(struct {
		application
		StatusLabel     string `json:"status_label"`
		ProgressPercent int    `json:"progress_percent"`
	}{
		application:     application(a),
		StatusLabel:     a.Status.Label(),
		ProgressPercent: a.Status.ProgressPercent(),
	})
}

// NewApplication contains information needed to apply for a microgrant.
type NewApplication struct {
	FullName               string  `json:"full_name" validate:"required,notblank,max=255"`
	Location               string  `json:"location" validate:"required,notblank,max=255"`
	BusinessName           string  `json:"business_name" validate:"required,notblank,max=255"`
	BusinessDescription    string  `json:"business_description" validate:"required,notblank,max=10000"`
	GrantAmount            float64 `json:"grant_amount" validate:"required,gt=0,lte=99999.99"`
	BudgetBreakdown        string  `json:"budget_breakdown" validate:"required,notblank,max=10000"`
	AdditionalInfoResponse string  `json:"additional_info_response" validate:"max=10000"`
}

func (na *NewApplication) Validate(validate *validator.Validate) error {
	na.FullName = core.CleanString(na.FullName)
	na.Location = core.CleanString(na.Location)
	na.BusinessName = core.CleanString(na.BusinessName)
	na.BusinessDescription = core.CleanString(na.BusinessDescription)
	na.BudgetBreakdown = core.CleanString(na.BudgetBreakdown)
	na.AdditionalInfoResponse = core.CleanString(na.AdditionalInfoResponse)
	return validate.Struct(na)
}

// UpdateApplication defines what an applicant may modify on its application.
type UpdateApplication struct {
	FullName               *string  `json:"full_name" validate:"omitempty,notblank,max=255"`
	Location               *string  `json:"location" validate:"omitempty,notblank,max=255"`
	BusinessName           *string  `json:"business_name" validate:"omitempty,notblank,max=255"`
	BusinessDescription    *string  `json:"business_description" validate:"omitempty,notblank,max=10000"`
	GrantAmount            *float64 `json:"grant_amount" validate:"omitempty,gt=0,lte=99999.99"`
	BudgetBreakdown        *string  `json:"budget_breakdown" validate:"omitempty,notblank,max=10000"`
	AdditionalInfoResponse *string  `json:"additional_info_response" validate:"omitempty,max=10000"`
}

func (ua *UpdateApplication) Validate(validate *validator.Validate) error {
	for _, s := range []*string{ua.FullName, ua.Location, ua.BusinessName, ua.BusinessDescription, ua.BudgetBreakdown, ua.AdditionalInfoResponse} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	return validate.Struct(ua)
}

func (ua UpdateApplication) apply(app *Application) {
	if ua.FullName != nil {
		app.FullName = *ua.FullName
	}
	if ua.Location != nil {
		app.Location = *ua.Location
	}
	if ua.BusinessName != nil {
		app.BusinessName = *ua.BusinessName
	}
	if ua.BusinessDescription != nil {
		app.BusinessDescription = *ua.BusinessDescription
	}
	if ua.GrantAmount != nil {
		app.GrantAmount = *ua.GrantAmount
	}
	if ua.BudgetBreakdown != nil {
		app.BudgetBreakdown = *ua.BudgetBreakdown
	}
	if ua.AdditionalInfoResponse != nil {
		app.AdditionalInfoResponse = *ua.AdditionalInfoResponse
	}
}

// StatusUpdate is the outcome of a review.
type StatusUpdate struct {
	Status                 Status `json:"status" validate:"required,oneof=under_review additional_info approved rejected funded"`
	AdditionalInfoRequired string `json:"additional_info_required" validate:"max=10000"`
}

func (su *StatusUpdate) Validate(validate *validator.Validate) error {
	su.Status = Status(core.CleanString(string(su.Status), true /* lower */))
	su.AdditionalInfoRequired = core.CleanString(su.AdditionalInfoRequired)
	return validate.Struct(su)
}

type StoryStatus string

// Success story statuses
const (
	StoryPending  StoryStatus = "pending"
	StoryApproved StoryStatus = "approved"
	StoryRejected StoryStatus = "rejected"
)

// SuccessStory is told by a grantee about their business; it is public once approved.
type SuccessStory struct {
	ID        string      `json:"id" db:"id"`
	AccountID string      `json:"-" db:"account_id"`
	Name      string      `json:"name" db:"name"`
	Business  string      `json:"business" db:"business"`
	Amount    float64     `json:"amount" db:"amount"`
	Story     string      `json:"story" db:"story"`
	Image     string      `json:"image" db:"image"`
	Status    StoryStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"` // UTC
}

// NewSuccessStory contains information needed to submit a success story.
// Name defaults to the full name of the author.
type NewSuccessStory struct {
	Name     string  `json:"name" validate:"max=255"`
	Business string  `json:"business" validate:"required,notblank,max=255"`
	Amount   float64 `json:"amount" validate:"required,gt=0,lte=99999999.99"`
	Story    string  `json:"story" validate:"required,notblank,max=10000"`
	Image    string  `json:"image" validate:"max=255"`
}

func (ns *NewSuccessStory) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Business = core.CleanString(ns.Business)
	ns.Story = core.CleanString(ns.Story)
	ns.Image = core.CleanString(ns.Image)
	return validate.Struct(ns)
}

// StoryReview is the moderation outcome of a success story.
type StoryReview struct {
	Status StoryStatus `json:"status" validate:"required,oneof=pending approved rejected"`
}

func (sr *StoryReview) Validate(validate *validator.Validate) error {
	sr.Status = StoryStatus(core.CleanString(string(sr.Status), true /* lower */))
	return validate.Struct(sr)
}
