package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/dashboard"
	"github.com/trezcool/haven/core/healing"
	"github.com/trezcool/haven/core/learning"
	"github.com/trezcool/haven/core/microgrant"
)

func Test_dashboardApi(t *testing.T) {
	f := setup(t)
	youth := f.createAccount(t, "Amani Juma", "amani@test.cd", account.RoleYouth)
	youthToken := getToken(t, f.app, youth)

	runHTTPTests(t, f, []httpTest{
		{name: "requires auth", method: http.MethodGet, path: "/dashboard", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "mentor", method: http.MethodGet, path: "/dashboard", token: getToken(t, f.app, f.createAccount(t, "Neema Baraka", "neema@test.cd", account.RoleMentor)), wantCode: http.StatusOK, wantData: []byte(`{}`)},
		{name: "donor", method: http.MethodGet, path: "/dashboard", token: getToken(t, f.app, f.createAccount(t, "Jabari Okello", "jabari@test.cd", account.RoleDonor)), wantCode: http.StatusOK, wantData: []byte(`{}`)},
		{
			name:     "new youth",
			method:   http.MethodGet,
			path:     "/dashboard",
			token:    youthToken,
			wantCode: http.StatusOK,
			wantData: []byte(`{
				"name": "Amani Juma",
				"mood": {"label": null, "emoji": null},
				"journal_entries_this_week": 0,
				"journal_progress_percent": 0,
				"course_title": "No course enrolled",
				"course_progress_percent": 0,
				"microgrant_status": "Not Applied",
				"microgrant_progress_percent": 0,
				"mentorship_session_time": "Tomorrow, 2PM",
				"notifications": []
			}`),
		},
	})

	t.Run("active youth", func(t *testing.T) {
		ctx := context.Background()
		_, err := f.deps.HealingSvc.CheckInMood(ctx, youth.ID, healing.NewMoodCheckIn{Mood: "Peaceful"})
		require.NoError(t, err)
		for i := 0; i < 2; i++ {
			_, err = f.deps.HealingSvc.CreateJournalEntry(ctx, youth.ID, healing.NewJournalEntry{Content: "Day by day."})
			require.NoError(t, err)
		}
		course, err := f.deps.LearningSvc.CreateCourse(ctx, learning.NewCourse{Title: "Business Basics", Description: "Run a small business."})
		require.NoError(t, err)
		enrollment, err := f.deps.LearningSvc.Enroll(ctx, youth.ID, course.ID)
		require.NoError(t, err)
		progress := 30
		_, err = f.deps.LearningSvc.UpdateProgress(ctx, youth.ID, enrollment.ID, learning.ProgressUpdate{Progress: &progress})
		require.NoError(t, err)
		_, err = f.deps.MicrograntSvc.Create(ctx, youth.ID, microgrant.NewApplication{FullName: "Amani Juma", GrantAmount: 100})
		require.NoError(t, err)

		rec := f.do(httpTest{method: http.MethodGet, path: "/dashboard", token: youthToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var view dashboard.View
		decodeBody(t, rec, &view)

		require.NotNil(t, view.Mood.Label)
		assert.Equal(t, "Peaceful", *view.Mood.Label)
		assert.Equal(t, "😌", *view.Mood.Emoji)
		assert.Equal(t, 2, view.JournalEntriesThisWeek)
		assert.Equal(t, 40, view.JournalProgressPercent)
		assert.Equal(t, "Business Basics", view.CourseTitle)
		assert.Equal(t, 30, view.CourseProgressPercent)
		assert.Equal(t, "Under Review", view.MicrograntStatus)
		assert.Equal(t, 25, view.MicrograntProgressPercent)
		assert.Len(t, view.Notifications, 2)
		for _, n := range view.Notifications {
			assert.Equal(t, "You submitted a new journal entry.", n.Message)
		}
	})
}
