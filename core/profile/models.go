package profile

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/haven/core/account"
)

const defaultYouthImage = "image/default.png"

type (
	// StringList is a list of free-form labels, stored as a JSON array.
	StringList []string

	// Links maps a social network name to a profile URL, stored as a JSON object.
	Links map[string]string
)

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func (l Links) Value() (driver.Value, error) {
	if l == nil {
		l = Links{}
	}
	return json.Marshal(l)
}

func (l *Links) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func scanJSON(src, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.Errorf("cannot scan %T into %T", src, dest)
	}
}

// Profile is the role-specific extension of an Account: *Mentor, *Donor or *Youth.
type Profile interface {
	Role() account.Role
	Owner() string
	// readOnlyFields lists the JSON fields clients cannot update.
	readOnlyFields() []string
}

// contact holds the contact preferences shared by every profile variant.
type contact struct {
	PreferredContactMethod string `json:"preferred_contact_method" db:"preferred_contact_method" validate:"omitempty,oneof=email phone"`
	ContactPhone           string `json:"contact_phone" db:"contact_phone" validate:"max=20"`
	AlternativeEmail       string `json:"alternative_email" db:"alternative_email" validate:"omitempty,email"`
}

type Mentor struct {
	AccountID    string     `json:"-" db:"account_id"`
	Expertise    StringList `json:"expertise" db:"expertise" validate:"max=20,dive,notblank,max=100"`
	Image        string     `json:"image" db:"image" validate:"max=255"`
	Rating       float64    `json:"rating" db:"rating"`
	Available    bool       `json:"available" db:"available"`
	Age          *int       `json:"age" db:"age" validate:"omitempty,gte=16,lte=120"`
	CityOfOrigin string     `json:"city_of_origin" db:"city_of_origin" validate:"max=100"`
	Status       string     `json:"status" db:"status" validate:"max=100"`
	Bio          string     `json:"bio" db:"bio" validate:"max=5000"`
	Interests    StringList `json:"interests" db:"interests" validate:"max=20,dive,notblank,max=100"`
	SocialLinks  Links      `json:"social_links" db:"social_links" validate:"max=10,dive,keys,notblank,endkeys,url"`
	contact
}

func NewMentor(accountID string) *Mentor {
	return &Mentor{
		AccountID:   accountID,
		Expertise:   StringList{},
		Available:   true,
		Interests:   StringList{},
		SocialLinks: Links{},
	}
}

func (m *Mentor) Role() account.Role        { return account.RoleMentor }
func (m *Mentor) Owner() string             { return m.AccountID }
func (m *Mentor) readOnlyFields() []string { return []string{"rating"} }

type Donor struct {
	AccountID    string     `json:"-" db:"account_id"`
	Organization string     `json:"organization" db:"organization" validate:"max=255"`
	Bio          string     `json:"bio" db:"bio" validate:"max=5000"`
	Image        string     `json:"image" db:"image" validate:"max=255"`
	FocusAreas   StringList `json:"focus_areas" db:"focus_areas" validate:"max=20,dive,notblank,max=100"`
	Anonymous    bool       `json:"anonymous" db:"anonymous"`
	SocialLinks  Links      `json:"social_links" db:"social_links" validate:"max=10,dive,keys,notblank,endkeys,url"`
	contact
}

func NewDonor(accountID string) *Donor {
	return &Donor{
		AccountID:   accountID,
		FocusAreas:  StringList{},
		SocialLinks: Links{},
	}
}

func (d *Donor) Role() account.Role        { return account.RoleDonor }
func (d *Donor) Owner() string             { return d.AccountID }
func (d *Donor) readOnlyFields() []string { return nil }

type Youth struct {
	AccountID             string     `json:"-" db:"account_id"`
	Image                 string     `json:"image" db:"image" validate:"max=255"`
	Available             bool       `json:"available" db:"available"`
	Expertise             StringList `json:"expertise" db:"expertise" validate:"max=20,dive,notblank,max=100"`
	Age                   *int       `json:"age" db:"age" validate:"omitempty,gte=10,lte=120"`
	CityOfOrigin          string     `json:"city_of_origin" db:"city_of_origin" validate:"max=100"`
	Status                string     `json:"status" db:"status" validate:"max=100"`
	Bio                   string     `json:"bio" db:"bio" validate:"max=5000"`
	Interests             StringList `json:"interests" db:"interests" validate:"max=20,dive,notblank,max=100"`
	SocialLinks           Links      `json:"social_links" db:"social_links" validate:"max=10,dive,keys,notblank,endkeys,url"`
	DisplacementDate      *time.Time `json:"displacement_date" db:"displacement_date"`
	ReasonForDisplacement string     `json:"reason_for_displacement" db:"reason_for_displacement" validate:"max=5000"`
	CurrentLocation       string     `json:"current_location" db:"current_location" validate:"max=255"`
	ImmediateNeeds        string     `json:"immediate_needs" db:"immediate_needs" validate:"max=5000"`
	Skills                StringList `json:"skills" db:"skills" validate:"max=30,dive,notblank,max=100"`
	Aspirations           string     `json:"aspirations" db:"aspirations" validate:"max=5000"`
	FamilyMembersCount    *int       `json:"family_members_count" db:"family_members_count" validate:"omitempty,gte=0,lte=50"`
	SeekingHelp           bool       `json:"seeking_help" db:"seeking_help"`
	MyStory               string     `json:"my_story" db:"my_story" validate:"max=10000"`
	SpecificNeedsGoals    string     `json:"specific_needs_goals" db:"specific_needs_goals" validate:"max=5000"`
	AchievementsStrengths string     `json:"achievements_strengths" db:"achievements_strengths" validate:"max=5000"`
	SponsorshipImpact     string     `json:"sponsorship_impact" db:"sponsorship_impact" validate:"max=5000"`
	contact
}

func NewYouth(accountID string) *Youth {
	return &Youth{
		AccountID:   accountID,
		Image:       defaultYouthImage,
		Expertise:   StringList{},
		Interests:   StringList{},
		SocialLinks: Links{},
		Skills:      StringList{},
	}
}

func (y *Youth) Role() account.Role        { return account.RoleYouth }
func (y *Youth) Owner() string             { return y.AccountID }
func (y *Youth) readOnlyFields() []string { return nil }

// variants maps each role owning a profile to the constructor of its default profile.
// RoleAdmin has no profile.
var variants = map[account.Role]func(accountID string) Profile{
	account.RoleMentor: func(id string) Profile { return NewMentor(id) },
	account.RoleDonor:  func(id string) Profile { return NewDonor(id) },
	account.RoleYouth:  func(id string) Profile { return NewYouth(id) },
}

// HasProfile tells whether accounts of the `role` own a profile.
func HasProfile(role account.Role) bool {
	_, ok := variants[role]
	return ok
}

// Identity is the part of the Account merged into profile views.
type Identity struct {
	ID       string       `json:"id"`
	FullName string       `json:"full_name"`
	Email    string       `json:"email"`
	Role     account.Role `json:"role"`
}

func identityOf(acc account.Account) Identity {
	return Identity{ID: acc.ID, FullName: acc.FullName, Email: acc.Email, Role: acc.Role}
}

// View is the merged representation of an account and its profile: MentorView, DonorView or YouthView.
type View interface {
	Account() Identity
}

type MentorView struct {
	Identity
	*Mentor
}

type DonorView struct {
	Identity
	*Donor
}

type YouthView struct {
	Identity
	*Youth
	Mentor *MentorSummary `json:"mentor"`
}

func (v MentorView) Account() Identity { return v.Identity }
func (v DonorView) Account() Identity  { return v.Identity }
func (v YouthView) Account() Identity  { return v.Identity }

// MentorSummary is the read-only view of a youth's mentor.
type MentorSummary struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Image    string `json:"image"`
}

// MentorCard is a mentor directory entry.
type MentorCard struct {
	ID           string     `json:"id" db:"id"`
	FullName     string     `json:"full_name" db:"full_name"`
	Email        string     `json:"email" db:"email"`
	Expertise    StringList `json:"expertise" db:"expertise"`
	Image        string     `json:"image" db:"image"`
	Rating       float64    `json:"rating" db:"rating"`
	Available    bool       `json:"available" db:"available"`
	CityOfOrigin string     `json:"city_of_origin" db:"city_of_origin"`
	Bio          string     `json:"bio" db:"bio"`
}
