package learning

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core"
)

var (
	// errors
	ErrCourseNotFound     = core.NewNotFoundError("course not found")
	ErrEnrollmentNotFound = core.NewNotFoundError("enrollment not found")
	ErrAlreadyEnrolled    = errors.New("You are already enrolled in this course.")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		ListCourses(ctx context.Context) ([]Course, error)
		// CreateEnrollment fails with ErrAlreadyEnrolled if the account already follows the course.
		CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		GetEnrollment(ctx context.Context, id string) (Enrollment, error)
		// ListEnrollments returns the enrollments of the account, oldest first.
		ListEnrollments(ctx context.Context, accountID string) ([]Enrollment, error)
		UpdateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	return svc.repo.CreateCourse(ctx, Course{
		ID:          uuid.NewString(),
		Title:       nc.Title,
		Description: nc.Description,
		Icon:        nc.Icon,
		Color:       nc.Color,
		Modules:     nc.Modules,
		Duration:    nc.Duration,
		CreatedAt:   time.Now().UTC(),
	})
}

func (svc *Service) ListCourses(ctx context.Context) ([]Course, error) {
	return svc.repo.ListCourses(ctx)
}

// Enroll registers the account to the course `courseID`, once.
func (svc *Service) Enroll(ctx context.Context, accountID, courseID string) (Enrollment, error) {
	course, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Cause(err) == ErrCourseNotFound {
			return Enrollment{}, core.NewValidationError(nil, core.FieldError{Field: "course_id", Error: ErrCourseNotFound.Error()})
		}
		return Enrollment{}, errors.Wrap(err, "finding course")
	}

	enrollment, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		CourseID:    course.ID,
		CourseTitle: course.Title,
		EnrolledAt:  time.Now().UTC(),
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyEnrolled {
			return Enrollment{}, core.NewValidationError(ErrAlreadyEnrolled)
		}
		return Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return enrollment, nil
}

func (svc *Service) ListEnrollments(ctx context.Context, accountID string) ([]Enrollment, error) {
	return svc.repo.ListEnrollments(ctx, accountID)
}

// UpdateProgress records the progress of the account on one of its enrollments.
// Reaching 100% (or flagging the course completed) completes the course and earns its certificate.
func (svc *Service) UpdateProgress(ctx context.Context, accountID, id string, pu ProgressUpdate) (Enrollment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Enrollment{}, ErrEnrollmentNotFound
	}
	enrollment, err := svc.repo.GetEnrollment(ctx, id)
	if err != nil {
		return Enrollment{}, err
	}
	if enrollment.AccountID != accountID {
		return Enrollment{}, ErrEnrollmentNotFound
	}

	if pu.Progress != nil {
		enrollment.Progress = *pu.Progress
	}
	if pu.Completed != nil && *pu.Completed {
		enrollment.Progress = maxProgress
	}
	if enrollment.Progress >= maxProgress {
		enrollment.Completed = true
		enrollment.CertificateEarned = true
	}
	return svc.repo.UpdateEnrollment(ctx, enrollment)
}

// Achievements returns the completed enrollments which earned a certificate.
func (svc *Service) Achievements(ctx context.Context, accountID string) ([]Enrollment, error) {
	enrollments, err := svc.repo.ListEnrollments(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "listing enrollments")
	}
	achievements := make([]Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Completed && e.CertificateEarned {
			achievements = append(achievements, e)
		}
	}
	return achievements, nil
}
