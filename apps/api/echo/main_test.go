package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/haven/apps/api/echo"
	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/dashboard"
	"github.com/trezcool/haven/core/healing"
	"github.com/trezcool/haven/core/learning"
	"github.com/trezcool/haven/core/microgrant"
	"github.com/trezcool/haven/core/notification"
	"github.com/trezcool/haven/core/profile"
	"github.com/trezcool/haven/core/story"
	"github.com/trezcool/haven/services/email"
	"github.com/trezcool/haven/services/tokenstore"
	"github.com/trezcool/haven/storage/database/inmem"
	"github.com/trezcool/haven/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type fixture struct {
	app      *Server
	deps     ServerDeps
	conf     *core.Config
	accRepo  account.Repository
	profiles profile.Repository
	prov     *profile.Provisioner
	mailSvc  *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) fixture {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger()
	testutil.Setup(conf, logger)
	validate, translator := testutil.NewValidator()

	// set up DB & repos
	db := inmemdb.Open()
	accRepo := inmemdb.NewAccountRepository(db)
	profiles := inmemdb.NewProfileRepository(db)
	prov := profile.NewProvisioner(profiles)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	accountSvc := account.NewService(db, accRepo, prov, mailSvc, conf)
	notificationSvc := notification.NewService(inmemdb.NewNotificationRepository(db), logger)
	healingSvc := healing.NewService(inmemdb.NewHealingRepository(db), notificationSvc)
	micrograntSvc := microgrant.NewService(inmemdb.NewMicrograntRepository(db), notificationSvc)
	learningSvc := learning.NewService(inmemdb.NewLearningRepository(db))

	deps := ServerDeps{
		Conf:            conf,
		Logger:          logger,
		Blocklist:       tokenstore.NewMemoryBlocklist(),
		AccountSvc:      accountSvc,
		ProfileSvc:      profile.NewService(db, profiles, accountSvc, validate),
		NotificationSvc: notificationSvc,
		HealingSvc:      healingSvc,
		MicrograntSvc:   micrograntSvc,
		LearningSvc:     learningSvc,
		StorySvc:        story.NewService(inmemdb.NewStoryRepository(db)),
		DashboardSvc:    dashboard.NewService(healingSvc, learningSvc, micrograntSvc, notificationSvc, conf),
		Validate:        validate,
		Translator:      translator,
	}

	// set up server
	return fixture{
		app:      NewServer(deps),
		deps:     deps,
		conf:     conf,
		accRepo:  accRepo,
		profiles: profiles,
		prov:     prov,
		mailSvc:  mailSvc,
	}
}

func (f fixture) createAccount(t *testing.T, fullName, email string, role account.Role) account.Account {
	return testutil.CreateAccount(t, f.accRepo, f.prov, fullName, email, role)
}

func (f fixture) do(tt httpTest) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	f.app.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, app *Server, acc account.Account) string {
	token, err := app.IssueToken(acc)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decodeBody() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if _, ok := j1.([]interface{}); !ok {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, f fixture, tests []httpTest) {
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, f.do(tt))
		})
	}
}
