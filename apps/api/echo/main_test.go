package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	. "github.com/trezcool/classsync/apps/api/echo"
	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/assignment"
	"github.com/trezcool/classsync/core/chat"
	"github.com/trezcool/classsync/core/ledger"
	"github.com/trezcool/classsync/core/quiz"
	"github.com/trezcool/classsync/core/user"
	"github.com/trezcool/classsync/core/voting"
	emailsvc "github.com/trezcool/classsync/services/email"
	inmemdb "github.com/trezcool/classsync/storage/database/inmem"
	testutil "github.com/trezcool/classsync/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	*Server
	conf    *core.Config
	usrRepo user.Repository
	mailer  *emailsvc.MockService
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := testutil.Config()
	logger := testutil.NopLogger{}
	validate, translator := testutil.ValidatorAndTranslator()
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	mailer := emailsvc.NewMockService(conf, logger)

	usrSvc := user.NewService(usrRepo, validate)
	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
		UserSvc:        usrSvc,
		VotingSvc:      voting.NewService(inmemdb.NewVotingRepository(db), usrSvc, mailer, logger, conf),
		ChatSvc:        chat.NewService(inmemdb.NewChatRepository(db), validate),
		AssignmentSvc:  assignment.NewService(inmemdb.NewAssignmentRepository(db), usrSvc, mailer, logger, validate),
		LedgerSvc:      ledger.NewService(inmemdb.NewLedgerRepository(db), usrSvc, logger, validate),
		QuizSvc:        quiz.NewService(inmemdb.NewQuizRepository(db), validate),
	})
	return &testApp{Server: server, conf: conf, usrRepo: usrRepo, mailer: mailer}
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
	return req, httptest.NewRecorder()
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// do serves one request and returns the recorder.
func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := app.do(method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
