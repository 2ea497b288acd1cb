package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/learning"
)

func Test_learningApi(t *testing.T) {
	f := setup(t)
	youth := f.createAccount(t, "Amani Juma", "amani@test.cd", account.RoleYouth)
	other := f.createAccount(t, "Baraka Mwangi", "baraka@test.cd", account.RoleYouth)
	admin := f.createAccount(t, "Root", "root@test.cd", account.RoleAdmin)
	youthToken := getToken(t, f.app, youth)
	adminToken := getToken(t, f.app, admin)

	course := []byte(`{"title": "Business Basics", "description": "Run a small business.", "color": "#ff8800", "modules": 6}`)
	runHTTPTests(t, f, []httpTest{
		{name: "create course requires admin", method: http.MethodPost, path: "/learning/courses", token: youthToken, body: course, wantCode: http.StatusForbidden},
		{
			name:     "invalid course",
			method:   http.MethodPost,
			path:     "/learning/courses",
			token:    adminToken,
			body:     []byte(`{"title": "Business Basics"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"description": "this field is required"}),
		},
	})

	rec := f.do(httpTest{method: http.MethodPost, path: "/learning/courses", token: adminToken, body: course})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c learning.Course
	decodeBody(t, rec, &c)
	enroll := marshalObj(t, learning.EnrollRequest{CourseID: c.ID})

	runHTTPTests(t, f, []httpTest{
		{name: "courses", method: http.MethodGet, path: "/learning/courses", token: youthToken, wantCode: http.StatusOK, wantData: marshalObj(t, []learning.Course{c})},
		{
			name:     "enroll to unknown course",
			method:   http.MethodPost,
			path:     "/learning/enroll",
			token:    youthToken,
			body:     marshalObj(t, learning.EnrollRequest{CourseID: uuid.NewString()}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"course_id": "course not found"}),
		},
		{name: "enroll", method: http.MethodPost, path: "/learning/enroll", token: youthToken, body: enroll, wantCode: http.StatusCreated},
		{
			name:     "enroll twice",
			method:   http.MethodPost,
			path:     "/learning/enroll",
			token:    youthToken,
			body:     enroll,
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "You are already enrolled in this course."}),
		},
		{name: "no achievements yet", method: http.MethodGet, path: "/learning/achievements", token: youthToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
	})

	rec = f.do(httpTest{method: http.MethodGet, path: "/learning/enrollments", token: youthToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var enrollments []learning.Enrollment
	decodeBody(t, rec, &enrollments)
	require.Len(t, enrollments, 1)
	assert.Equal(t, "Business Basics", enrollments[0].CourseTitle)
	path := "/learning/enrollments/" + enrollments[0].ID

	runHTTPTests(t, f, []httpTest{
		{name: "progress of someone else", method: http.MethodPatch, path: path, token: getToken(t, f.app, other), body: []byte(`{"progress": 40}`), wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "enrollment not found"})},
		{name: "progress out of range", method: http.MethodPatch, path: path, token: youthToken, body: []byte(`{"progress": 140}`), wantCode: http.StatusBadRequest},
		{name: "progress", method: http.MethodPatch, path: path, token: youthToken, body: []byte(`{"progress": 40}`), wantCode: http.StatusOK},
	})

	t.Run("completion earns the certificate", func(t *testing.T) {
		rec := f.do(httpTest{method: http.MethodPatch, path: path, token: youthToken, body: []byte(`{"completed": true}`)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var e learning.Enrollment
		decodeBody(t, rec, &e)
		assert.Equal(t, 100, e.Progress)
		assert.True(t, e.Completed)
		assert.True(t, e.CertificateEarned)

		rec = f.do(httpTest{method: http.MethodGet, path: "/learning/achievements", token: youthToken})
		require.Equal(t, http.StatusOK, rec.Code)
		var achievements []learning.Enrollment
		decodeBody(t, rec, &achievements)
		require.Len(t, achievements, 1)
		assert.Equal(t, e.ID, achievements[0].ID)
	})
}
