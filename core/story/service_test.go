package story_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/story"
	"github.com/trezcool/haven/storage/database/inmem"
	"github.com/trezcool/haven/tests"
)

func TestStory_Author(t *testing.T) {
	s := story.Story{AuthorName: "Amani Juma"}
	assert.Equal(t, "Amani Juma", s.Author())

	s.Anonymous = true
	assert.Equal(t, "Anonymous", s.Author())

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Anonymous", got["author"])
	assert.NotContains(t, got, "author_name")
	assert.NotContains(t, got, "account_id")
}

func TestNewStory_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()

	tests := []struct {
		name    string
		ns      story.NewStory
		wantErr bool
	}{
		{name: "valid", ns: story.NewStory{Content: "I opened a shop.", Category: " Business "}},
		{name: "blank content", ns: story.NewStory{Content: "   ", Category: "hope"}, wantErr: true},
		{name: "unknown category", ns: story.NewStory{Content: "Hi.", Category: "trauma"}, wantErr: true},
		{name: "no category", ns: story.NewStory{Content: "Hi."}, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ns.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, story.CategoryBusiness, tt.ns.Category)
		})
	}
}

func TestService(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	accRepo := inmemdb.NewAccountRepository(db)
	svc := story.NewService(inmemdb.NewStoryRepository(db))

	amani := testutil.CreateAccount(t, accRepo, nil, "Amani Juma", "amani@test.cd", account.RoleYouth)
	neema := testutil.CreateAccount(t, accRepo, nil, "Neema Baraka", "neema@test.cd", account.RoleMentor)

	stories, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, stories)
	assert.Empty(t, stories)

	hope, err := svc.Create(ctx, amani, story.NewStory{Content: "We found a home.", Category: story.CategoryHope})
	require.NoError(t, err)
	assert.Equal(t, "Amani Juma", hope.Author())
	time.Sleep(time.Millisecond)
	growth, err := svc.Create(ctx, neema, story.NewStory{Content: "Back to school.", Category: story.CategoryGrowth, Anonymous: true})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", growth.Author())

	tests := []struct {
		category string
		wantIDs  []string
	}{
		{category: "", wantIDs: []string{growth.ID, hope.ID}},
		{category: "all", wantIDs: []string{growth.ID, hope.ID}},
		{category: " ALL ", wantIDs: []string{growth.ID, hope.ID}},
		{category: "hope", wantIDs: []string{hope.ID}},
		{category: "Growth", wantIDs: []string{growth.ID}},
		{category: "business", wantIDs: []string{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run("category "+tt.category, func(t *testing.T) {
			stories, err := svc.List(ctx, tt.category)
			require.NoError(t, err)

			ids := make([]string, 0, len(stories))
			for _, s := range stories {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	t.Run("author names", func(t *testing.T) {
		stories, err := svc.List(ctx, story.CategoryAll)
		require.NoError(t, err)
		require.Len(t, stories, 2)
		assert.Equal(t, "Anonymous", stories[0].Author())
		assert.Equal(t, "Amani Juma", stories[1].Author())
	})
}
