package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/healing"
	"github.com/trezcool/haven/core/learning"
	"github.com/trezcool/haven/core/microgrant"
	"github.com/trezcool/haven/core/notification"
	"github.com/trezcool/haven/core/profile"
	"github.com/trezcool/haven/core/story"
)

type txKey struct{}

type (
	// tables holds the rows of every entity, by value.
	tables struct {
		accounts      map[string]account.Account
		profiles      map[account.Role]map[string]profile.Profile
		notifications []notification.Notification
		moods         []healing.MoodCheckIn
		journal       []healing.JournalEntry
		posts         []healing.SupportPost
		replies       []healing.SupportReply
		applications  map[string]microgrant.Application
		successes     []microgrant.SuccessStory
		courses       map[string]learning.Course
		enrollments   map[string]learning.Enrollment
		stories       []story.Story
	}

	// DB is an in-memory store. Transactions are serialized and rolled back by restoring a snapshot of the tables.
	DB struct {
		mu   sync.RWMutex
		txMu sync.Mutex
		t    tables
	}
)

var _ core.Transactor = (*DB)(nil) // interface compliance check

func Open() *DB {
	return &DB{t: newTables()}
}

func newTables() tables {
	return tables{
		accounts: make(map[string]account.Account),
		profiles: map[account.Role]map[string]profile.Profile{
			account.RoleMentor: make(map[string]profile.Profile),
			account.RoleDonor:  make(map[string]profile.Profile),
			account.RoleYouth:  make(map[string]profile.Profile),
		},
		applications: make(map[string]microgrant.Application),
		courses:      make(map[string]learning.Course),
		enrollments:  make(map[string]learning.Enrollment),
	}
}

// Reset drops every row.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.t = newTables()
}

func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	snapshot := db.t.clone()
	db.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		db.mu.Lock()
		db.t = snapshot
		db.mu.Unlock()
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// write runs fn with the tables locked for writing.
// Outside of a transaction, it also waits for the running transaction to end.
func (db *DB) write(ctx context.Context, fn func(t *tables) error) error {
	if !inTx(ctx) {
		db.txMu.Lock()
		defer db.txMu.Unlock()
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(&db.t)
}

func (db *DB) read(fn func(t *tables) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(&db.t)
}

func (t tables) clone() tables {
	c := tables{
		accounts:      make(map[string]account.Account, len(t.accounts)),
		profiles:      make(map[account.Role]map[string]profile.Profile, len(t.profiles)),
		notifications: append([]notification.Notification(nil), t.notifications...),
		moods:         append([]healing.MoodCheckIn(nil), t.moods...),
		journal:       append([]healing.JournalEntry(nil), t.journal...),
		posts:         append([]healing.SupportPost(nil), t.posts...),
		replies:       append([]healing.SupportReply(nil), t.replies...),
		applications:  make(map[string]microgrant.Application, len(t.applications)),
		successes:     append([]microgrant.SuccessStory(nil), t.successes...),
		courses:       make(map[string]learning.Course, len(t.courses)),
		enrollments:   make(map[string]learning.Enrollment, len(t.enrollments)),
		stories:       append([]story.Story(nil), t.stories...),
	}
	for k, v := range t.accounts {
		c.accounts[k] = v
	}
	for role, rows := range t.profiles {
		c.profiles[role] = make(map[string]profile.Profile, len(rows))
		for k, v := range rows {
			c.profiles[role][k] = v // rows are replaced, never mutated
		}
	}
	for k, v := range t.applications {
		c.applications[k] = v
	}
	for k, v := range t.courses {
		c.courses[k] = v
	}
	for k, v := range t.enrollments {
		c.enrollments[k] = v
	}
	return c
}
