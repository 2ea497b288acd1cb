package inmemdb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/profile"
)

type profileRepository struct {
	db *DB
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *DB) *profileRepository {
	return &profileRepository{db: db}
}

// cloneProfile copies `p` so that callers never share rows with the store.
func cloneProfile(p profile.Profile) profile.Profile {
	strs := func(l profile.StringList) profile.StringList { return append(profile.StringList{}, l...) }
	links := func(l profile.Links) profile.Links {
		c := make(profile.Links, len(l))
		for k, v := range l {
			c[k] = v
		}
		return c
	}

	switch p := p.(type) {
	case *profile.Mentor:
		c := *p
		c.Expertise, c.Interests, c.SocialLinks = strs(p.Expertise), strs(p.Interests), links(p.SocialLinks)
		return &c
	case *profile.Donor:
		c := *p
		c.FocusAreas, c.SocialLinks = strs(p.FocusAreas), links(p.SocialLinks)
		return &c
	case *profile.Youth:
		c := *p
		c.Expertise, c.Interests, c.Skills, c.SocialLinks = strs(p.Expertise), strs(p.Interests), strs(p.Skills), links(p.SocialLinks)
		return &c
	default:
		return p
	}
}

func rowsOf(t *tables, role account.Role) (map[string]profile.Profile, error) {
	rows, ok := t.profiles[role]
	if !ok {
		return nil, errors.Errorf("no profile table for role %q", role)
	}
	return rows, nil
}

func (repo *profileRepository) EnsureProfile(ctx context.Context, p profile.Profile) error {
	return repo.db.write(ctx, func(t *tables) error {
		rows, err := rowsOf(t, p.Role())
		if err != nil {
			return err
		}
		if _, ok := rows[p.Owner()]; !ok {
			rows[p.Owner()] = cloneProfile(p)
		}
		return nil
	})
}

func (repo *profileRepository) GetProfile(_ context.Context, role account.Role, accountID string) (profile.Profile, error) {
	var found profile.Profile
	err := repo.db.read(func(t *tables) error {
		rows, err := rowsOf(t, role)
		if err != nil {
			return err
		}
		p, ok := rows[accountID]
		if !ok {
			return profile.ErrNotFound
		}
		found = cloneProfile(p)
		return nil
	})
	return found, err
}

func (repo *profileRepository) UpdateProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		rows, err := rowsOf(t, p.Role())
		if err != nil {
			return err
		}
		if _, ok := rows[p.Owner()]; !ok {
			return profile.ErrNotFound
		}
		rows[p.Owner()] = cloneProfile(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (repo *profileRepository) DeleteProfile(ctx context.Context, role account.Role, accountID string) error {
	return repo.db.write(ctx, func(t *tables) error {
		rows, err := rowsOf(t, role)
		if err != nil {
			return err
		}
		if _, ok := rows[accountID]; !ok {
			return profile.ErrNotFound
		}
		delete(rows, accountID)
		return nil
	})
}

func mentorCard(acc account.Account, m *profile.Mentor) profile.MentorCard {
	return profile.MentorCard{
		ID:           acc.ID,
		FullName:     acc.FullName,
		Email:        acc.Email,
		Expertise:    append(profile.StringList{}, m.Expertise...),
		Image:        m.Image,
		Rating:       m.Rating,
		Available:    m.Available,
		CityOfOrigin: m.CityOfOrigin,
		Bio:          m.Bio,
	}
}

func (repo *profileRepository) ListMentors(_ context.Context) ([]profile.MentorCard, error) {
	cards := make([]profile.MentorCard, 0)
	err := repo.db.read(func(t *tables) error {
		for id, p := range t.profiles[account.RoleMentor] {
			if acc, ok := t.accounts[id]; ok && acc.Role == account.RoleMentor {
				cards = append(cards, mentorCard(acc, p.(*profile.Mentor)))
			}
		}
		return nil
	})
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].FullName != cards[j].FullName {
			return cards[i].FullName < cards[j].FullName
		}
		return cards[i].ID < cards[j].ID
	})
	return cards, err
}

func (repo *profileRepository) GetMentor(_ context.Context, accountID string) (profile.MentorCard, error) {
	var card profile.MentorCard
	err := repo.db.read(func(t *tables) error {
		acc, ok := t.accounts[accountID]
		if !ok || acc.Role != account.RoleMentor {
			return profile.ErrNotFound
		}
		p, ok := t.profiles[account.RoleMentor][accountID]
		if !ok {
			return profile.ErrNotFound
		}
		card = mentorCard(acc, p.(*profile.Mentor))
		return nil
	})
	return card, err
}
