package microgrant

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("microgrant application not found")
	ErrStoryNotFound = core.NewNotFoundError("success story not found")
)

type (
	Repository interface {
		CreateApplication(ctx context.Context, app Application) (Application, error)
		GetApplication(ctx context.Context, id string) (Application, error)
		// ListApplications returns the applications of the account, most recently submitted first.
		ListApplications(ctx context.Context, accountID string) ([]Application, error)
		// FirstApplication returns the earliest application of the account or ErrNotFound.
		FirstApplication(ctx context.Context, accountID string) (Application, error)
		UpdateApplication(ctx context.Context, app Application) (Application, error)

		CreateSuccessStory(ctx context.Context, s SuccessStory) (SuccessStory, error)
		// ListSuccessStories returns the stories of the `status`, newest first.
		ListSuccessStories(ctx context.Context, status StoryStatus) ([]SuccessStory, error)
		// SetSuccessStoryStatus fails with ErrStoryNotFound when the story does not exist.
		SetSuccessStoryStatus(ctx context.Context, id string, status StoryStatus) (SuccessStory, error)
	}

	// Notifier is told about every modification of an existing application.
	Notifier interface {
		MicrograntUpdated(ctx context.Context, accountID, status string)
	}

	Service struct {
		repo     Repository
		notifier Notifier
	}
)

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Create submits a new application; it starts under review and notifies nobody.
func (svc *Service) Create(ctx context.Context, accountID string, na NewApplication) (Application, error) {
	now := time.Now().UTC()
	return svc.repo.CreateApplication(ctx, Application{
		ID:                     uuid.NewString(),
		AccountID:              accountID,
		FullName:               na.FullName,
		Location:               na.Location,
		BusinessName:           na.BusinessName,
		BusinessDescription:    na.BusinessDescription,
		GrantAmount:            na.GrantAmount,
		BudgetBreakdown:        na.BudgetBreakdown,
		Status:                 StatusUnderReview,
		AdditionalInfoResponse: na.AdditionalInfoResponse,
		SubmittedAt:            now,
		UpdatedAt:              now,
	})
}

func (svc *Service) List(ctx context.Context, accountID string) ([]Application, error) {
	return svc.repo.ListApplications(ctx, accountID)
}

func (svc *Service) First(ctx context.Context, accountID string) (Application, error) {
	return svc.repo.FirstApplication(ctx, accountID)
}

func (svc *Service) get(ctx context.Context, id string) (Application, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Application{}, ErrNotFound
	}
	return svc.repo.GetApplication(ctx, id)
}

// Get returns the application `id` if it belongs to the account.
func (svc *Service) Get(ctx context.Context, accountID, id string) (Application, error) {
	app, err := svc.get(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if app.AccountID != accountID {
		return Application{}, ErrNotFound
	}
	return app, nil
}

// Update applies the applicant's modifications, then notifies the applicant.
func (svc *Service) Update(ctx context.Context, accountID, id string, ua UpdateApplication) (Application, error) {
	app, err := svc.Get(ctx, accountID, id)
	if err != nil {
		return Application{}, err
	}
	ua.apply(&app)
	return svc.save(ctx, app)
}

// SetStatus records the outcome of a review, then notifies the applicant.
func (svc *Service) SetStatus(ctx context.Context, id string, su StatusUpdate) (Application, error) {
	app, err := svc.get(ctx, id)
	if err != nil {
		return Application{}, err
	}
	app.Status = su.Status
	app.AdditionalInfoRequired = su.AdditionalInfoRequired
	return svc.save(ctx, app)
}

func (svc *Service) save(ctx context.Context, app Application) (Application, error) {
	app.UpdatedAt = time.Now().UTC()
	app, err := svc.repo.UpdateApplication(ctx, app)
	if err != nil {
		return Application{}, errors.Wrap(err, "updating application")
	}
	svc.notifier.MicrograntUpdated(ctx, app.AccountID, string(app.Status))
	return app, nil
}

// SubmitSuccessStory stores the story of `author`, pending moderation.
func (svc *Service) SubmitSuccessStory(ctx context.Context, author account.Account, ns NewSuccessStory) (SuccessStory, error) {
	name := ns.Name
	if name == "" {
		name = author.FullName
	}
	s, err := svc.repo.CreateSuccessStory(ctx, SuccessStory{
		ID:        uuid.NewString(),
		AccountID: author.ID,
		Name:      name,
		Business:  ns.Business,
		Amount:    ns.Amount,
		Story:     ns.Story,
		Image:     ns.Image,
		Status:    StoryPending,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return SuccessStory{}, errors.Wrap(err, "creating success story")
	}
	return s, nil
}

// ListSuccessStories returns the approved stories, newest first.
func (svc *Service) ListSuccessStories(ctx context.Context) ([]SuccessStory, error) {
	return svc.repo.ListSuccessStories(ctx, StoryApproved)
}

func (svc *Service) ReviewSuccessStory(ctx context.Context, id string, sr StoryReview) (SuccessStory, error) {
	if _, err := uuid.Parse(id); err != nil {
		return SuccessStory{}, ErrStoryNotFound
	}
	return svc.repo.SetSuccessStoryStatus(ctx, id, sr.Status)
}
