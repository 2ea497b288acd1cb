package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/microgrant"
	"github.com/trezcool/haven/core/notification"
)

func Test_micrograntApi(t *testing.T) {
	f := setup(t)
	youth := f.createAccount(t, "Amani Juma", "amani@test.cd", account.RoleYouth)
	other := f.createAccount(t, "Baraka Mwangi", "baraka@test.cd", account.RoleYouth)
	admin := f.createAccount(t, "Root", "root@test.cd", account.RoleAdmin)
	youthToken := getToken(t, f.app, youth)
	otherToken := getToken(t, f.app, other)
	adminToken := getToken(t, f.app, admin)
	notFound := marshalObj(t, httpErr{Error: "microgrant application not found"})

	body := marshalObj(t, microgrant.NewApplication{
		FullName:            "Amani Juma",
		Location:            "Goma",
		BusinessName:        "Amani Tailoring",
		BusinessDescription: "Custom clothing for the neighbourhood.",
		GrantAmount:         450,
		BudgetBreakdown:     "Sewing machine: 300, fabric: 150",
	})

	runHTTPTests(t, f, []httpTest{
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/microgrants/applications",
			token:    youthToken,
			body:     []byte(`{"full_name": "Amani Juma"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"location":             "this field is required",
				"business_name":        "this field is required",
				"business_description": "this field is required",
				"grant_amount":         "this field is required",
				"budget_breakdown":     "this field is required",
			}),
		},
		{name: "nothing yet", method: http.MethodGet, path: "/microgrants/applications", token: youthToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{name: "unknown", method: http.MethodGet, path: "/microgrants/applications/" + uuid.NewString(), token: youthToken, wantCode: http.StatusNotFound, wantData: notFound},
	})

	rec := f.do(httpTest{method: http.MethodPost, path: "/microgrants/applications", token: youthToken, body: body})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var app map[string]interface{}
	decodeBody(t, rec, &app)
	assert.Equal(t, "under_review", app["status"])
	assert.Equal(t, "Under Review", app["status_label"])
	assert.EqualValues(t, 25, app["progress_percent"])
	id := app["id"].(string)

	runHTTPTests(t, f, []httpTest{
		{name: "get someone else's", method: http.MethodGet, path: "/microgrants/applications/" + id, token: otherToken, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "update someone else's", method: http.MethodPatch, path: "/microgrants/applications/" + id, token: otherToken, body: []byte(`{"location": "Bukavu"}`), wantCode: http.StatusNotFound, wantData: notFound},
		{name: "invalid update", method: http.MethodPatch, path: "/microgrants/applications/" + id, token: youthToken, body: []byte(`{"grant_amount": -1}`), wantCode: http.StatusBadRequest},
		{name: "update", method: http.MethodPatch, path: "/microgrants/applications/" + id, token: youthToken, body: []byte(`{"location": "Bukavu"}`), wantCode: http.StatusOK},
		{name: "set status requires admin", method: http.MethodPatch, path: "/microgrants/applications/" + id + "/status", token: youthToken, body: []byte(`{"status": "approved"}`), wantCode: http.StatusForbidden},
		{name: "set invalid status", method: http.MethodPatch, path: "/microgrants/applications/" + id + "/status", token: adminToken, body: []byte(`{"status": "maybe"}`), wantCode: http.StatusBadRequest},
		{name: "set status of unknown", method: http.MethodPatch, path: "/microgrants/applications/" + uuid.NewString() + "/status", token: adminToken, body: []byte(`{"status": "approved"}`), wantCode: http.StatusNotFound, wantData: notFound},
		{name: "set status", method: http.MethodPatch, path: "/microgrants/applications/" + id + "/status", token: adminToken, body: []byte(`{"status": "approved"}`), wantCode: http.StatusOK},
	})

	t.Run("applicant view", func(t *testing.T) {
		rec := f.do(httpTest{method: http.MethodGet, path: "/microgrants/applications/" + id, token: youthToken})
		require.Equal(t, http.StatusOK, rec.Code)
		var got map[string]interface{}
		decodeBody(t, rec, &got)
		assert.Equal(t, "Bukavu", got["location"])
		assert.Equal(t, "Approved", got["status_label"])
		assert.EqualValues(t, 75, got["progress_percent"])

		rec = f.do(httpTest{method: http.MethodGet, path: "/notifications", token: youthToken})
		require.Equal(t, http.StatusOK, rec.Code)
		var notifs []notification.Notification
		decodeBody(t, rec, &notifs)
		msgs := make([]string, 0, len(notifs))
		for _, n := range notifs {
			msgs = append(msgs, n.Message)
		}
		assert.ElementsMatch(t, []string{
			"Your microgrant status has been updated to 'Under Review'.",
			"Your microgrant status has been updated to 'Approved'.",
		}, msgs)
	})
}

func Test_micrograntApi_successStories(t *testing.T) {
	f := setup(t)
	youth := f.createAccount(t, "Amani Juma", "amani@test.cd", account.RoleYouth)
	admin := f.createAccount(t, "Root", "root@test.cd", account.RoleAdmin)
	youthToken := getToken(t, f.app, youth)
	adminToken := getToken(t, f.app, admin)

	runHTTPTests(t, f, []httpTest{
		{name: "applications require auth", method: http.MethodGet, path: "/microgrants/applications", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "public list", method: http.MethodGet, path: "/microgrants/success-stories", wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{name: "submit requires auth", method: http.MethodPost, path: "/microgrants/success-stories", body: []byte(`{}`), wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/microgrants/success-stories",
			token:    youthToken,
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"business": "this field is required",
				"amount":   "this field is required",
				"story":    "this field is required",
			}),
		},
	})

	body := marshalObj(t, microgrant.NewSuccessStory{Business: "Amani Tailoring", Amount: 450, Story: "Uniforms for 3 schools."})
	rec := f.do(httpTest{method: http.MethodPost, path: "/microgrants/success-stories", token: youthToken, body: body})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created microgrant.SuccessStory
	decodeBody(t, rec, &created)
	assert.Equal(t, "Amani Juma", created.Name)
	assert.Equal(t, microgrant.StoryPending, created.Status)
	statusPath := "/microgrants/success-stories/" + created.ID + "/status"

	runHTTPTests(t, f, []httpTest{
		{name: "pending stories are hidden", method: http.MethodGet, path: "/microgrants/success-stories", wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{name: "review requires auth", method: http.MethodPatch, path: statusPath, body: []byte(`{"status": "approved"}`), wantCode: http.StatusUnauthorized},
		{name: "review requires admin", method: http.MethodPatch, path: statusPath, token: youthToken, body: []byte(`{"status": "approved"}`), wantCode: http.StatusForbidden},
		{name: "invalid review", method: http.MethodPatch, path: statusPath, token: adminToken, body: []byte(`{"status": "funded"}`), wantCode: http.StatusBadRequest},
		{
			name:     "review unknown",
			method:   http.MethodPatch,
			path:     "/microgrants/success-stories/" + uuid.NewString() + "/status",
			token:    adminToken,
			body:     []byte(`{"status": "approved"}`),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "success story not found"}),
		},
		{name: "approve", method: http.MethodPatch, path: statusPath, token: adminToken, body: []byte(`{"status": "Approved"}`), wantCode: http.StatusOK},
	})

	t.Run("approved stories are public", func(t *testing.T) {
		rec := f.do(httpTest{method: http.MethodGet, path: "/microgrants/success-stories"})
		require.Equal(t, http.StatusOK, rec.Code)
		var got []microgrant.SuccessStory
		decodeBody(t, rec, &got)
		require.Len(t, got, 1)
		assert.Equal(t, created.ID, got[0].ID)
		assert.Equal(t, microgrant.StoryApproved, got[0].Status)
		assert.Equal(t, "Amani Tailoring", got[0].Business)
	})
}
