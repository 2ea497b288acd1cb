package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/profile"
)

var contactColumns = []string{"preferred_contact_method", "contact_phone", "alternative_email"}

// profileTable describes where a profile variant is stored.
type profileTable struct {
	name    string
	columns []string // account_id excluded
	new     func(accountID string) profile.Profile
}

var profileTables = map[account.Role]profileTable{
	account.RoleMentor: {
		name: "mentor_profiles",
		columns: append([]string{
			"expertise", "image", "rating", "available", "age", "city_of_origin", "status", "bio", "interests",
			"social_links",
		}, contactColumns...),
		new: func(id string) profile.Profile { return profile.NewMentor(id) },
	},
	account.RoleDonor: {
		name: "donor_profiles",
		columns: append([]string{
			"organization", "bio", "image", "focus_areas", "anonymous", "social_links",
		}, contactColumns...),
		new: func(id string) profile.Profile { return profile.NewDonor(id) },
	},
	account.RoleYouth: {
		name: "youth_profiles",
		columns: append([]string{
			"image", "available", "expertise", "age", "city_of_origin", "status", "bio", "interests", "social_links",
			"displacement_date", "reason_for_displacement", "current_location", "immediate_needs", "skills",
			"aspirations", "family_members_count", "seeking_help", "my_story", "specific_needs_goals",
			"achievements_strengths", "sponsorship_impact",
		}, contactColumns...),
		new: func(id string) profile.Profile { return profile.NewYouth(id) },
	},
}

func tableOf(role account.Role) (profileTable, error) {
	t, ok := profileTables[role]
	if !ok {
		return profileTable{}, errors.Errorf("no profile table for role %q", role)
	}
	return t, nil
}

func (t profileTable) selectQuery() string {
	return "SELECT account_id, " + strings.Join(t.columns, ", ") + " FROM " + t.name + " WHERE account_id = $1"
}

func (t profileTable) insertQuery() string {
	cols := append([]string{"account_id"}, t.columns...)
	return "INSERT INTO " + t.name + " (" + strings.Join(cols, ", ") + ") VALUES (:" + strings.Join(cols, ", :") + ")" +
		" ON CONFLICT (account_id) DO NOTHING"
}

func (t profileTable) updateQuery() string {
	sets := make([]string, 0, len(t.columns))
	for _, col := range t.columns {
		sets = append(sets, col+" = :"+col)
	}
	return "UPDATE " + t.name + " SET " + strings.Join(sets, ", ") + " WHERE account_id = :account_id"
}

const mentorCardQuery = `SELECT a.id, a.full_name, a.email, p.expertise, p.image, p.rating, p.available, p.city_of_origin, p.bio
	FROM accounts a JOIN mentor_profiles p ON p.account_id = a.id
	WHERE a.role = 'mentor'`

type profileRepository struct {
	db *DB
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *DB) *profileRepository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) EnsureProfile(ctx context.Context, p profile.Profile) error {
	t, err := tableOf(p.Role())
	if err != nil {
		return err
	}
	_, err = sqlx.NamedExecContext(ctx, repo.db.exec(ctx), t.insertQuery(), p)
	return errors.Wrap(err, "inserting profile")
}

func (repo *profileRepository) GetProfile(ctx context.Context, role account.Role, accountID string) (profile.Profile, error) {
	t, err := tableOf(role)
	if err != nil {
		return nil, err
	}
	p := t.new(accountID)
	if err = sqlx.GetContext(ctx, repo.db.exec(ctx), p, t.selectQuery(), accountID); err != nil {
		return nil, trapNoRowsErr(err, profile.ErrNotFound, "finding profile")
	}
	return p, nil
}

func (repo *profileRepository) UpdateProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	t, err := tableOf(p.Role())
	if err != nil {
		return nil, err
	}
	res, err := sqlx.NamedExecContext(ctx, repo.db.exec(ctx), t.updateQuery(), p)
	if err != nil {
		return nil, errors.Wrap(err, "updating profile")
	}
	if err = checkAffected(res, profile.ErrNotFound, "updating profile"); err != nil {
		return nil, err
	}
	return p, nil
}

func (repo *profileRepository) DeleteProfile(ctx context.Context, role account.Role, accountID string) error {
	t, err := tableOf(role)
	if err != nil {
		return err
	}
	res, err := repo.db.exec(ctx).ExecContext(ctx, "DELETE FROM "+t.name+" WHERE account_id = $1", accountID)
	if err != nil {
		return errors.Wrap(err, "deleting profile")
	}
	return checkAffected(res, profile.ErrNotFound, "deleting profile")
}

func (repo *profileRepository) ListMentors(ctx context.Context) ([]profile.MentorCard, error) {
	cards := make([]profile.MentorCard, 0)
	if err := sqlx.SelectContext(ctx, repo.db.exec(ctx), &cards, mentorCardQuery+" ORDER BY a.full_name, a.id"); err != nil {
		return nil, errors.Wrap(err, "listing mentors")
	}
	return cards, nil
}

func (repo *profileRepository) GetMentor(ctx context.Context, accountID string) (profile.MentorCard, error) {
	var card profile.MentorCard
	if err := sqlx.GetContext(ctx, repo.db.exec(ctx), &card, mentorCardQuery+" AND a.id = $1", accountID); err != nil {
		return profile.MentorCard{}, trapNoRowsErr(err, profile.ErrNotFound, "finding mentor")
	}
	return card, nil
}
