package account

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/haven/core"
)

// Role is the closed set of account kinds. Every role but RoleAdmin owns a profile.
type Role string

const (
	RoleYouth  Role = "youth"
	RoleMentor Role = "mentor"
	RoleDonor  Role = "donor"
	RoleAdmin  Role = "admin"
)

var (
	Roles = []Role{RoleYouth, RoleMentor, RoleDonor, RoleAdmin}

	roleLabels = map[Role]string{
		RoleYouth:  "Displaced Youth",
		RoleMentor: "Mentor",
		RoleDonor:  "Donor",
		RoleAdmin:  "Admin",
	}
)

func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

func (r Role) Label() string {
	return roleLabels[r]
}

type Account struct {
	ID           string     `json:"id" db:"id"`
	FullName     string     `json:"full_name" db:"full_name"`
	Email        string     `json:"email" db:"email"`
	Role         Role       `json:"role" db:"role"`
	MentorID     *string    `json:"mentor_id,omitempty" db:"mentor_id"`
	PasswordHash []byte     `json:"-" db:"password_hash"`
	CreatedAt    time.Time  `json:"-" db:"created_at"` // UTC
	UpdatedAt    time.Time  `json:"-" db:"updated_at"` // UTC
	LastLogin    *time.Time `json:"-" db:"last_login"` // UTC
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

func (a *Account) IsAdmin() bool { return a.Role == RoleAdmin }
func (a *Account) IsYouth() bool { return a.Role == RoleYouth }

// NewAccount contains information needed to create a new Account.
type NewAccount struct {
	FullName string `json:"full_name" validate:"required,notblank,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,role"`
}

// Validate cleans the input and checks it against the validation rules. A missing role defaults to RoleYouth.
func (na *NewAccount) Validate(validate *validator.Validate) error {
	na.FullName = core.CleanString(na.FullName)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Role = Role(core.CleanString(string(na.Role), true /* lower */))
	if na.Role == "" {
		na.Role = RoleYouth
	}
	return validate.Struct(na)
}

type GetFilter struct {
	ID    string
	Email string
}
