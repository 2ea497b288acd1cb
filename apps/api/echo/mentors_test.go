package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/profile"
)

func Test_mentorApi(t *testing.T) {
	f := setup(t)
	youth := f.createAccount(t, "Amani Juma", "amani@test.cd", account.RoleYouth)
	mentor := f.createAccount(t, "Neema Baraka", "neema@test.cd", account.RoleMentor)
	f.createAccount(t, "Jabari Okello", "jabari@test.cd", account.RoleDonor)
	youthToken := getToken(t, f.app, youth)

	card := profile.MentorCard{
		ID:        mentor.ID,
		FullName:  mentor.FullName,
		Email:     mentor.Email,
		Expertise: profile.StringList{},
		Available: true,
	}

	runHTTPTests(t, f, []httpTest{
		{name: "directory", method: http.MethodGet, path: "/mentors", wantCode: http.StatusOK, wantData: marshalObj(t, []profile.MentorCard{card})},
		{name: "mentor", method: http.MethodGet, path: "/mentors/" + mentor.ID, wantCode: http.StatusOK, wantData: marshalObj(t, card)},
		{name: "unknown mentor", method: http.MethodGet, path: "/mentors/" + uuid.NewString(), wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "mentor not found"})},
		{name: "youth is not a mentor", method: http.MethodGet, path: "/mentors/" + youth.ID, wantCode: http.StatusNotFound},
		{name: "my mentor requires auth", method: http.MethodGet, path: "/mentors/my", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name:     "my mentor as a mentor",
			method:   http.MethodGet,
			path:     "/mentors/my",
			token:    getToken(t, f.app, mentor),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "Only youth users have assigned mentors."}),
		},
		{
			name:     "no mentor assigned",
			method:   http.MethodGet,
			path:     "/mentors/my",
			token:    youthToken,
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "No mentor assigned."}),
		},
	})

	t.Run("assigned mentor", func(t *testing.T) {
		rec := f.do(httpTest{
			method: http.MethodPatch,
			path:   "/accounts/profile",
			token:  youthToken,
			body:   marshalObj(t, map[string]string{"mentor_id": mentor.ID}),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = f.do(httpTest{method: http.MethodGet, path: "/mentors/my", token: youthToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got profile.MentorCard
		decodeBody(t, rec, &got)
		assert.Equal(t, card, got)
	})
}
