package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("profile not found")
	ErrMentorNotFound   = core.NewNotFoundError("mentor not found")
	ErrNoMentorAssigned = core.NewNotFoundError("No mentor assigned.")
	ErrNoProfileForRole = errors.New("this role has no profile")
	ErrNotYouth         = errors.New("Only youth users have assigned mentors.")

	errUnknownField  = "unknown field"
	errReadOnlyField = "this field is read-only"
	errInvalidValue  = "invalid value"

	// identity fields can be read on views, but not updated through the profile.
	identityFields = []string{"id", "full_name", "email", "role", "mentor"}
	mentorIDField  = "mentor_id"
)

type (
	Repository interface {
		// EnsureProfile stores `p` unless its owner already has a profile of the same variant.
		EnsureProfile(ctx context.Context, p Profile) error
		GetProfile(ctx context.Context, role account.Role, accountID string) (Profile, error)
		UpdateProfile(ctx context.Context, p Profile) (Profile, error)
		DeleteProfile(ctx context.Context, role account.Role, accountID string) error
		ListMentors(ctx context.Context) ([]MentorCard, error)
		GetMentor(ctx context.Context, accountID string) (MentorCard, error)
	}

	// Accounts is the part of the account service the profiles rely on.
	Accounts interface {
		GetByID(ctx context.Context, id string) (account.Account, error)
		SetMentor(ctx context.Context, youthID, mentorID string) (account.Account, error)
	}
)

// Provisioner creates and removes profiles as accounts are created or change role.
type Provisioner struct {
	repo Repository
}

var _ account.Provisioner = (*Provisioner)(nil)

func NewProvisioner(repo Repository) *Provisioner {
	return &Provisioner{repo: repo}
}

// Provision makes sure `acc` owns exactly one profile of the variant matching its role.
func (p *Provisioner) Provision(ctx context.Context, acc account.Account) error {
	newProfile, ok := variants[acc.Role]
	if !ok {
		return nil
	}
	return errors.Wrap(p.repo.EnsureProfile(ctx, newProfile(acc.ID)), "ensuring profile")
}

// Reconcile drops the profile of the `previous` role and provisions the one of the current role.
func (p *Provisioner) Reconcile(ctx context.Context, acc account.Account, previous account.Role) error {
	if previous != acc.Role && HasProfile(previous) {
		if err := p.repo.DeleteProfile(ctx, previous, acc.ID); err != nil && errors.Cause(err) != ErrNotFound {
			return errors.Wrap(err, "deleting previous profile")
		}
	}
	return p.Provision(ctx, acc)
}

// Service resolves the profile of an account from its role.
type Service struct {
	tx       core.Transactor
	repo     Repository
	accounts Accounts
	validate *validator.Validate
}

func NewService(tx core.Transactor, repo Repository, accounts Accounts, validate *validator.Validate) *Service {
	return &Service{
		tx:       tx,
		repo:     repo,
		accounts: accounts,
		validate: validate,
	}
}

// Get returns the merged view of `acc` and its profile.
func (svc *Service) Get(ctx context.Context, acc account.Account) (View, error) {
	if !HasProfile(acc.Role) {
		return nil, core.NewValidationError(ErrNoProfileForRole)
	}
	p, err := svc.repo.GetProfile(ctx, acc.Role, acc.ID)
	if err != nil {
		return nil, errors.Wrap(err, "getting profile")
	}
	return svc.view(ctx, acc, p)
}

func (svc *Service) view(ctx context.Context, acc account.Account, p Profile) (View, error) {
	switch p := p.(type) {
	case *Mentor:
		return MentorView{Identity: identityOf(acc), Mentor: p}, nil
	case *Donor:
		return DonorView{Identity: identityOf(acc), Donor: p}, nil
	case *Youth:
		v := YouthView{Identity: identityOf(acc), Youth: p}
		if acc.MentorID != nil {
			mentor, err := svc.summary(ctx, *acc.MentorID)
			if err != nil {
				return nil, errors.Wrap(err, "getting mentor summary")
			}
			v.Mentor = mentor
		}
		return v, nil
	default:
		return nil, errors.Errorf("unexpected profile type %T", p)
	}
}

func (svc *Service) summary(ctx context.Context, mentorID string) (*MentorSummary, error) {
	mentor, err := svc.accounts.GetByID(ctx, mentorID)
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	summary := &MentorSummary{FullName: mentor.FullName, Email: mentor.Email}
	if p, err := svc.repo.GetProfile(ctx, account.RoleMentor, mentor.ID); err == nil {
		summary.Image = p.(*Mentor).Image
	} else if errors.Cause(err) != ErrNotFound {
		return nil, err
	}
	return summary, nil
}

// Update applies the partial update `data` (JSON field → JSON value) to the profile of `acc`.
// Fields the variant does not know are rejected, as well as read-only ones.
// Youth profiles also accept "mentor_id" to (un)assign their mentor.
func (svc *Service) Update(ctx context.Context, acc account.Account, data map[string]json.RawMessage) (View, error) {
	if !HasProfile(acc.Role) {
		return nil, core.NewValidationError(ErrNoProfileForRole)
	}

	var view View
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := svc.repo.GetProfile(ctx, acc.Role, acc.ID)
		if err != nil {
			return errors.Wrap(err, "getting profile")
		}

		fields, mentorID, setMentor, err := splitUpdate(p, data)
		if err != nil {
			return err
		}
		if err = decodeInto(p, fields); err != nil {
			return err
		}
		if err = svc.validate.Struct(p); err != nil {
			return err
		}
		if p, err = svc.repo.UpdateProfile(ctx, p); err != nil {
			return errors.Wrap(err, "updating profile")
		}

		if setMentor {
			if acc, err = svc.accounts.SetMentor(ctx, acc.ID, mentorID); err != nil {
				return errors.Wrap(err, "setting mentor")
			}
		}
		view, err = svc.view(ctx, acc, p)
		return err
	})
	return view, err
}

// splitUpdate checks the keys of `data` against the fields of `p`.
// It returns the profile fields to decode and the mentor assignment, if any.
func splitUpdate(p Profile, data map[string]json.RawMessage) (map[string]json.RawMessage, string, bool, error) {
	writable := core.JSONFields(p)
	readOnly := make(map[string]struct{})
	for _, fld := range append(identityFields, p.readOnlyFields()...) {
		readOnly[fld] = struct{}{}
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var (
		mentorID  string
		setMentor bool
		flds      []core.FieldError
	)
	fields := make(map[string]json.RawMessage, len(data))
	for _, key := range keys {
		val := data[key]
		if key == mentorIDField && p.Role() == account.RoleYouth {
			var id *string
			if err := json.Unmarshal(val, &id); err != nil {
				flds = append(flds, core.FieldError{Field: key, Error: errInvalidValue})
				continue
			}
			if id != nil {
				mentorID = core.CleanString(*id)
			}
			setMentor = true
			continue
		}
		if _, ok := readOnly[key]; ok {
			flds = append(flds, core.FieldError{Field: key, Error: errReadOnlyField})
			continue
		}
		if _, ok := writable[key]; !ok {
			flds = append(flds, core.FieldError{Field: key, Error: errUnknownField})
			continue
		}
		fields[key] = val
	}

	if len(flds) > 0 {
		return nil, "", false, core.NewValidationError(nil, flds...)
	}
	return fields, mentorID, setMentor, nil
}

// decodeInto overwrites the fields of `p` present in `fields`.
func decodeInto(p Profile, fields map[string]json.RawMessage) error {
	if len(fields) == 0 {
		return nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrap(err, "encoding update")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err = dec.Decode(p); err != nil {
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			return core.NewValidationError(nil, core.FieldError{Field: typeErr.Field, Error: errInvalidValue})
		}
		return core.NewValidationError(errors.Wrap(err, "decoding update"))
	}
	return nil
}

// ListMentors returns the mentor directory.
func (svc *Service) ListMentors(ctx context.Context) ([]MentorCard, error) {
	return svc.repo.ListMentors(ctx)
}

func (svc *Service) GetMentor(ctx context.Context, id string) (MentorCard, error) {
	card, err := svc.repo.GetMentor(ctx, id)
	if errors.Cause(err) == ErrNotFound {
		return MentorCard{}, ErrMentorNotFound
	}
	return card, err
}

// MyMentor returns the mentor assigned to the youth `acc`.
func (svc *Service) MyMentor(ctx context.Context, acc account.Account) (MentorCard, error) {
	if !acc.IsYouth() {
		return MentorCard{}, core.NewValidationError(ErrNotYouth)
	}
	if acc.MentorID == nil {
		return MentorCard{}, ErrNoMentorAssigned
	}
	card, err := svc.repo.GetMentor(ctx, *acc.MentorID)
	if errors.Cause(err) == ErrNotFound {
		return MentorCard{}, ErrNoMentorAssigned
	}
	return card, err
}
