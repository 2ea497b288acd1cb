package account

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("account not found")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrNotYouth           = errors.New("only youth accounts can have a mentor")
	ErrNotMentor          = errors.New("must reference a mentor account")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error
		CreateAccount(ctx context.Context, acc Account) (Account, error)
		GetAccount(ctx context.Context, filter GetFilter) (Account, error)
		UpdateAccount(ctx context.Context, acc Account) (Account, error)
		// ClearMentees unassigns the mentor `mentorID` from all of its mentees.
		ClearMentees(ctx context.Context, mentorID string) error
		DeleteAccount(ctx context.Context, id string) error
	}

	// Provisioner keeps role-specific profiles in line with account roles.
	// It is called within the transaction writing the account.
	Provisioner interface {
		Provision(ctx context.Context, acc Account) error
		Reconcile(ctx context.Context, acc Account, previous Role) error
	}

	Service struct {
		tx          core.Transactor
		repo        Repository
		provisioner Provisioner
		mailSvc     core.EmailService
		appName     string
	}
)

func NewService(tx core.Transactor, repo Repository, provisioner Provisioner, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		tx:          tx,
		repo:        repo,
		provisioner: provisioner,
		mailSvc:     mailSvc,
		appName:     conf.AppName,
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, excludedIDs ...string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedIDs...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return emailExistsError()
		}
		return errors.Wrap(err, "checking email uniqueness")
	}
	return nil
}

func emailExistsError() error {
	return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
}

// Create stores a new account and provisions the profile of its role in the same transaction.
// `na` is expected to have been validated.
func (svc *Service) Create(ctx context.Context, na NewAccount) (Account, error) {
	email := core.CleanString(na.Email, true /* lower */)
	if email == "" {
		return Account{}, core.NewValidationError(nil, core.FieldError{Field: "email", Error: "this field is required"})
	}
	if !na.Role.Valid() {
		return Account{}, core.NewValidationError(ErrInvalidRole, core.FieldError{Field: "role", Error: ErrInvalidRole.Error()})
	}
	if err := svc.checkUniqueness(ctx, email); err != nil {
		return Account{}, err
	}

	now := time.Now().UTC()
	acc := Account{
		ID:        uuid.NewString(),
		FullName:  core.CleanString(na.FullName),
		Email:     email,
		Role:      na.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acc.SetPassword(na.Password); err != nil {
		return Account{}, errors.Wrap(err, "hashing password")
	}

	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if acc, err = svc.repo.CreateAccount(ctx, acc); err != nil {
			if errors.Cause(err) == ErrEmailExists {
				return emailExistsError()
			}
			return errors.Wrap(err, "creating account")
		}
		return errors.Wrap(svc.provisioner.Provision(ctx, acc), "provisioning profile")
	})
	if err != nil {
		return Account{}, err
	}

	svc.sendWelcomeMail(acc)
	return acc, nil
}

// Authenticate finds the account matching the credentials and records the login.
// It fails with ErrInvalidCredentials whether the email is unknown or the password wrong.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Account, error) {
	acc, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, errors.Wrap(err, "finding account by email")
	}
	if err = acc.CheckPassword(pwd); err != nil {
		return Account{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	acc.LastLogin = &now
	acc, err = svc.repo.UpdateAccount(ctx, acc)
	return acc, errors.Wrap(err, "setting last login")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Account{}, ErrNotFound
	}
	return svc.repo.GetAccount(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Account, error) {
	return svc.repo.GetAccount(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

// SetMentor assigns the mentor `mentorID` to the youth `youthID`. An empty mentorID unassigns it.
func (svc *Service) SetMentor(ctx context.Context, youthID, mentorID string) (Account, error) {
	var acc Account
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if acc, err = svc.GetByID(ctx, youthID); err != nil {
			return errors.Wrap(err, "finding youth")
		}
		if !acc.IsYouth() {
			return core.NewValidationError(ErrNotYouth, core.FieldError{Field: "mentor_id", Error: ErrNotYouth.Error()})
		}

		if mentorID == "" {
			acc.MentorID = nil
		} else {
			mentor, err := svc.GetByID(ctx, mentorID)
			if err != nil && errors.Cause(err) != ErrNotFound {
				return errors.Wrap(err, "finding mentor")
			}
			if err != nil || mentor.Role != RoleMentor {
				return core.NewValidationError(ErrNotMentor, core.FieldError{Field: "mentor_id", Error: ErrNotMentor.Error()})
			}
			acc.MentorID = &mentor.ID
		}

		acc.UpdatedAt = time.Now().UTC()
		acc, err = svc.repo.UpdateAccount(ctx, acc)
		return errors.Wrap(err, "updating account")
	})
	return acc, err
}

// ChangeRole moves the account to `role` and swaps its profile accordingly, atomically.
// A youth leaving the role loses its mentor; a mentor leaving the role is unassigned from its mentees.
func (svc *Service) ChangeRole(ctx context.Context, id string, role Role) (Account, error) {
	if !role.Valid() {
		return Account{}, core.NewValidationError(ErrInvalidRole, core.FieldError{Field: "role", Error: ErrInvalidRole.Error()})
	}

	var acc Account
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if acc, err = svc.GetByID(ctx, id); err != nil {
			return errors.Wrap(err, "finding account")
		}
		previous := acc.Role
		if previous == role {
			return nil
		}

		switch previous {
		case RoleYouth:
			acc.MentorID = nil
		case RoleMentor:
			if err = svc.repo.ClearMentees(ctx, acc.ID); err != nil {
				return errors.Wrap(err, "clearing mentees")
			}
		}
		acc.Role = role
		acc.UpdatedAt = time.Now().UTC()
		if acc, err = svc.repo.UpdateAccount(ctx, acc); err != nil {
			return errors.Wrap(err, "updating account")
		}
		return errors.Wrap(svc.provisioner.Reconcile(ctx, acc, previous), "reconciling profile")
	})
	return acc, err
}

// SetPassword replaces the password of the account identified by `email`.
func (svc *Service) SetPassword(ctx context.Context, email, pwd string) (Account, error) {
	acc, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return Account{}, err
	}
	if tag := PasswordPolicyViolation(pwd, acc.FullName, acc.Email); tag != "" {
		return Account{}, core.NewValidationError(nil, core.FieldError{Field: "password", Error: passwordPolicyTexts[tag]})
	}
	if err = acc.SetPassword(pwd); err != nil {
		return Account{}, errors.Wrap(err, "hashing password")
	}
	acc.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAccount(ctx, acc)
}

// Delete removes the account along with everything it owns.
func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return svc.repo.DeleteAccount(ctx, id)
}

type welcomeData struct {
	FullName  string
	Email     string
	RoleLabel string
}

func (svc *Service) sendWelcomeMail(acc Account) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: acc.FullName, Address: acc.Email}},
		Subject:      "Welcome to " + svc.appName,
		TemplateName: "welcome",
		TemplateData: welcomeData{
			FullName:  acc.FullName,
			Email:     acc.Email,
			RoleLabel: acc.Role.Label(),
		},
	})
}
