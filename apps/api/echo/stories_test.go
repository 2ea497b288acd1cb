package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/haven/core/account"
)

func Test_storyApi(t *testing.T) {
	f := setup(t)
	youth := f.createAccount(t, "Amani Juma", "amani@test.cd", account.RoleYouth)
	mentor := f.createAccount(t, "Neema Baraka", "neema@test.cd", account.RoleMentor)
	youthToken := getToken(t, f.app, youth)
	mentorToken := getToken(t, f.app, mentor)

	runHTTPTests(t, f, []httpTest{
		{name: "list requires auth", method: http.MethodGet, path: "/stories", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "create requires auth", method: http.MethodPost, path: "/stories", body: []byte(`{}`), wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "nothing yet", method: http.MethodGet, path: "/stories", token: youthToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/stories",
			token:    youthToken,
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"content":  "this field is required",
				"category": "this field is required",
			}),
		},
		{name: "invalid category", method: http.MethodPost, path: "/stories", token: youthToken, body: []byte(`{"content": "Hi.", "category": "tips"}`), wantCode: http.StatusBadRequest},
	})

	type storyResp struct {
		ID        string `json:"id"`
		Author    string `json:"author"`
		Content   string `json:"content"`
		Category  string `json:"category"`
		Anonymous bool   `json:"anonymous"`
	}
	create := func(t *testing.T, token, body string) storyResp {
		rec := f.do(httpTest{method: http.MethodPost, path: "/stories", token: token, body: []byte(body)})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var s storyResp
		decodeBody(t, rec, &s)
		return s
	}

	hope := create(t, youthToken, `{"content": "We found a home.", "category": "hope"}`)
	assert.Equal(t, "Amani Juma", hope.Author)
	assert.False(t, hope.Anonymous)
	time.Sleep(time.Millisecond)
	business := create(t, mentorToken, `{"content": "My shop opened.", "category": "Business", "anonymous": true}`)
	assert.Equal(t, "Anonymous", business.Author)
	assert.Equal(t, "business", business.Category)

	tests := []struct {
		query   string
		wantIDs []string
	}{
		{query: "", wantIDs: []string{business.ID, hope.ID}},
		{query: "?category=all", wantIDs: []string{business.ID, hope.ID}},
		{query: "?category=hope", wantIDs: []string{hope.ID}},
		{query: "?category=business", wantIDs: []string{business.ID}},
		{query: "?category=healing", wantIDs: []string{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run("list"+tt.query, func(t *testing.T) {
			rec := f.do(httpTest{method: http.MethodGet, path: "/stories" + tt.query, token: mentorToken})
			require.Equal(t, http.StatusOK, rec.Code)
			var got []storyResp
			decodeBody(t, rec, &got)

			ids := make([]string, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	t.Run("anonymous authors stay hidden", func(t *testing.T) {
		rec := f.do(httpTest{method: http.MethodGet, path: "/stories", token: youthToken})
		require.Equal(t, http.StatusOK, rec.Code)
		var got []storyResp
		decodeBody(t, rec, &got)
		require.Len(t, got, 2)
		assert.Equal(t, "Anonymous", got[0].Author)
		assert.Equal(t, "Amani Juma", got[1].Author)
		assert.NotContains(t, rec.Body.String(), "Neema Baraka")
	})
}
