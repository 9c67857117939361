package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/kemalcalak/Resume-Builder/internal/ai"
	"github.com/kemalcalak/Resume-Builder/internal/api/middleware"
)

type fakeWriter struct {
	err      error
	lastKind ai.BulletKind
}

func (f *fakeWriter) Summaries(_ context.Context, jobTitle string) (ai.Summaries, error) {
	if f.err != nil {
		return ai.Summaries{}, f.err
	}
	return ai.Summaries{Junior: "junior " + jobTitle, Mid: "mid", Senior: "senior"}, nil
}

func (f *fakeWriter) BulletPoints(_ context.Context, kind ai.BulletKind, subject string) (string, error) {
	f.lastKind = kind
	if f.err != nil {
		return "", f.err
	}
	return "<ul><li>" + subject + "</li></ul>", nil
}

type fakeCounter struct {
	counts  map[string]int64
	expires map[string]time.Duration
	err     error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.counts[key]++
	cmd.SetVal(f.counts[key])
	return cmd
}

func (f *fakeCounter) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.expires[key] = expiration
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func newAIRouter(h *AIHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := middleware.AuthMiddleware(testVerifier)
	r.POST("/ai/summary", auth, h.GenerateSummary)
	r.POST("/ai/bullet-points", auth, h.GenerateBulletPoints)
	return r
}

func postJSON(r http.Handler, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateSummary(t *testing.T) {
	counter := newFakeCounter()
	r := newAIRouter(NewAIHandler(&fakeWriter{}, counter, 5))

	w := postJSON(r, "/ai/summary", aliceToken, `{"jobTitle":"Go Developer"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"junior":"junior Go Developer"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	for key, ttl := range counter.expires {
		if !strings.HasPrefix(key, "rate:ai:kp_alice:") || ttl != time.Hour {
			t.Fatalf("unexpected rate key %q ttl %v", key, ttl)
		}
	}
	if len(counter.expires) != 1 {
		t.Fatalf("expected one rate key, got %d", len(counter.expires))
	}
}

func TestGenerateBulletPoints(t *testing.T) {
	writer := &fakeWriter{}
	r := newAIRouter(NewAIHandler(writer, nil, 0))

	w := postJSON(r, "/ai/bullet-points", aliceToken, `{"kind":"project","subject":"Resume Builder"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if writer.lastKind != ai.BulletsProject {
		t.Fatalf("expected project kind, got %q", writer.lastKind)
	}
	if !strings.Contains(w.Body.String(), `"bulletPoints"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	w = postJSON(r, "/ai/bullet-points", aliceToken, `{"kind":"hobby","subject":"chess"}`)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), `"kind"`) {
		t.Fatalf("expected kind validation error, got %d %s", w.Code, w.Body.String())
	}
}

func TestAIHandler_RateLimit(t *testing.T) {
	counter := newFakeCounter()
	r := newAIRouter(NewAIHandler(&fakeWriter{}, counter, 2))

	for i := 0; i < 2; i++ {
		if w := postJSON(r, "/ai/summary", aliceToken, `{"jobTitle":"SRE"}`); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, w.Code)
		}
	}
	w := postJSON(r, "/ai/summary", aliceToken, `{"jobTitle":"SRE"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", w.Code)
	}

	// Quotas are per owner.
	if w := postJSON(r, "/ai/summary", bobToken, `{"jobTitle":"SRE"}`); w.Code != http.StatusOK {
		t.Fatalf("other owner: expected 200 got %d", w.Code)
	}
}

func TestAIHandler_CounterOutageFailsOpen(t *testing.T) {
	counter := newFakeCounter()
	counter.err = errors.New("connection refused")
	r := newAIRouter(NewAIHandler(&fakeWriter{}, counter, 1))

	for i := 0; i < 3; i++ {
		if w := postJSON(r, "/ai/summary", aliceToken, `{"jobTitle":"SRE"}`); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, w.Code)
		}
	}
}

func TestAIHandler_Unavailable(t *testing.T) {
	r := newAIRouter(NewAIHandler(nil, nil, 0))

	w := postJSON(r, "/ai/summary", aliceToken, `{"jobTitle":"SRE"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", w.Code)
	}
}

func TestAIHandler_GenerationFailure(t *testing.T) {
	writer := &fakeWriter{err: fmt.Errorf("%w: empty response", ai.ErrGenerationFailed)}
	r := newAIRouter(NewAIHandler(writer, nil, 0))

	w := postJSON(r, "/ai/summary", aliceToken, `{"jobTitle":"SRE"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", w.Code)
	}
}
