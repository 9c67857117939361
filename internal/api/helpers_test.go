package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kemalcalak/Resume-Builder/internal/auth"
	"github.com/kemalcalak/Resume-Builder/internal/database"
	"github.com/kemalcalak/Resume-Builder/internal/document"
)

const (
	aliceToken = "token-alice"
	bobToken   = "token-bob"
)

type fakeVerifier map[string]auth.Identity

func (f fakeVerifier) Verify(token string) (auth.Identity, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return auth.Identity{}, auth.ErrInvalidToken
}

var testVerifier = fakeVerifier{
	aliceToken: {Subject: "kp_alice", GivenName: "Alice", FamilyName: "Doe", Email: "alice@example.com"},
	bobToken:   {Subject: "kp_bob", GivenName: "Bob", Email: "bob@example.com"},
}

type envelope struct {
	Success bool              `json:"success"`
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testServer struct {
	db     *gorm.DB
	store  *document.Store
	router *gin.Engine
}

func newTestServer(t *testing.T, deps Dependencies) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	store := document.NewStore(db, discardLogger())

	deps.Store = store
	deps.Verifier = testVerifier
	deps.Logger = discardLogger()
	if deps.Queue == nil {
		deps.Queue = &fakeQueue{}
	}
	if deps.Signer == nil {
		deps.Signer = &fakeSigner{}
	}

	router := NewRouter(nil, deps.Logger)
	RegisterRoutes(router, deps)
	return &testServer{db: db, store: store, router: router}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, env
}

// createDocument creates a document through the API and returns its external id.
func (s *testServer) createDocument(t *testing.T, token, title string) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/v1/documents", token, map[string]string{"title": title})
	if w.Code != http.StatusCreated {
		t.Fatalf("create document: status %d body=%s", w.Code, w.Body.String())
	}
	var summary documentSummary
	decodeData(t, env, &summary)
	return summary.DocumentID
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}
