package learning

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/haven/core"
)

const maxProgress = 100

type Course struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Icon        string    `json:"icon" db:"icon"`
	Color       string    `json:"color" db:"color"`
	Modules     int       `json:"modules" db:"modules"`
	Duration    string    `json:"duration" db:"duration"`
	CreatedAt   time.Time `json:"-" db:"created_at"` // UTC
}

type Enrollment struct {
	ID                string    `json:"id" db:"id"`
	AccountID         string    `json:"-" db:"account_id"`
	CourseID          string    `json:"course_id" db:"course_id"`
	CourseTitle       string    `json:"course_title" db:"course_title"`
	Progress          int       `json:"progress" db:"progress"`
	Completed         bool      `json:"completed" db:"completed"`
	CertificateEarned bool      `json:"certificate_earned" db:"certificate_earned"`
	CertificateURL    string    `json:"certificate_url" db:"certificate_url"`
	EnrolledAt        time.Time `json:"enrolled_at" db:"enrolled_at"` // UTC
}

type NewCourse struct {
	Title       string `json:"title" validate:"required,notblank,max=255"`
	Description string `json:"description" validate:"required,notblank,max=5000"`
	Icon        string `json:"icon" validate:"max=50"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Modules     int    `json:"modules" validate:"gte=0,lte=500"`
	Duration    string `json:"duration" validate:"max=50"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Icon = core.CleanString(nc.Icon)
	nc.Color = core.CleanString(nc.Color)
	nc.Duration = core.CleanString(nc.Duration)
	return validate.Struct(nc)
}

type EnrollRequest struct {
	CourseID string `json:"course_id" validate:"required,uuid"`
}

func (er *EnrollRequest) Validate(validate *validator.Validate) error {
	er.CourseID = core.CleanString(er.CourseID, true /* lower */)
	return validate.Struct(er)
}

type ProgressUpdate struct {
	Progress  *int  `json:"progress" validate:"omitempty,gte=0,lte=100"`
	Completed *bool `json:"completed"`
}

func (pu *ProgressUpdate) Validate(validate *validator.Validate) error {
	return validate.Struct(pu)
}
