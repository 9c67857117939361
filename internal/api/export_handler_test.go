package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"github.com/kemalcalak/Resume-Builder/internal/database"
	"github.com/kemalcalak/Resume-Builder/internal/tasks"
)

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

type fakeSigner struct {
	lastKey      string
	lastFilename string
	lastTTL      time.Duration
}

func (s *fakeSigner) GeneratePresignedURL(_ context.Context, objectKey string, duration time.Duration, filename string) (string, error) {
	s.lastKey, s.lastTTL, s.lastFilename = objectKey, duration, filename
	return "https://files.example.com/" + objectKey, nil
}

func TestCreateExport(t *testing.T) {
	queue := &fakeQueue{}
	s := newTestServer(t, Dependencies{Queue: queue, ExportMaxRetry: 3})
	id := s.createDocument(t, aliceToken, "Export me")

	w, env := s.do(t, http.MethodPost, "/v1/documents/"+id+"/export", aliceToken, nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d body=%s", w.Code, w.Body.String())
	}
	var out struct {
		ExportID uint   `json:"exportId"`
		TaskID   string `json:"taskId"`
	}
	decodeData(t, env, &out)
	if out.TaskID != "task-1" || out.ExportID == 0 {
		t.Fatalf("unexpected response %+v", out)
	}

	if len(queue.tasks) != 1 || queue.tasks[0].Type() != tasks.TypeDocumentExport {
		t.Fatalf("expected one export task, got %d", len(queue.tasks))
	}
	payload, err := tasks.ParseDocumentExportPayload(queue.tasks[0])
	if err != nil || payload.ExportID != out.ExportID {
		t.Fatalf("unexpected payload %+v err=%v", payload, err)
	}

	var export database.Export
	if err := s.db.First(&export, out.ExportID).Error; err != nil {
		t.Fatalf("load export: %v", err)
	}
	if export.Status != database.ExportQueued || export.TaskID != "task-1" || export.OwnerID != "kp_alice" {
		t.Fatalf("unexpected export row %+v", export)
	}
}

func TestCreateExport_ForeignDocument(t *testing.T) {
	queue := &fakeQueue{}
	s := newTestServer(t, Dependencies{Queue: queue})
	id := s.createDocument(t, aliceToken, "Mine")

	w, _ := s.do(t, http.MethodPost, "/v1/documents/"+id+"/export", bobToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	if len(queue.tasks) != 0 {
		t.Fatal("no task should be queued for a foreign document")
	}
}

func TestCreateExport_EnqueueFailure(t *testing.T) {
	s := newTestServer(t, Dependencies{Queue: &fakeQueue{err: errors.New("redis down")}})
	id := s.createDocument(t, aliceToken, "Queue down")

	w, _ := s.do(t, http.MethodPost, "/v1/documents/"+id+"/export", aliceToken, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}

	var exports []database.Export
	if err := s.db.Find(&exports).Error; err != nil {
		t.Fatalf("load exports: %v", err)
	}
	if len(exports) != 1 || exports[0].Status != database.ExportFailed {
		t.Fatalf("expected one failed export, got %+v", exports)
	}
}

func TestGetExportLink(t *testing.T) {
	signer := &fakeSigner{}
	s := newTestServer(t, Dependencies{Signer: signer})
	id := s.createDocument(t, aliceToken, "Backend / Go")
	path := "/v1/documents/" + id + "/export/link"

	if w, _ := s.do(t, http.MethodGet, path, aliceToken, nil); w.Code != http.StatusConflict {
		t.Fatalf("no export yet: expected 409 got %d", w.Code)
	}

	w, env := s.do(t, http.MethodPost, "/v1/documents/"+id+"/export", aliceToken, nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("create export: %d", w.Code)
	}
	var out struct {
		ExportID uint `json:"exportId"`
	}
	decodeData(t, env, &out)

	if w, _ := s.do(t, http.MethodGet, path, aliceToken, nil); w.Code != http.StatusConflict {
		t.Fatalf("queued export: expected 409 got %d", w.Code)
	}

	if err := s.db.Model(&database.Export{}).Where("id = ?", out.ExportID).Updates(map[string]any{
		"status":     database.ExportCompleted,
		"object_key": "exports/kp_alice/" + id + "/a.pdf",
	}).Error; err != nil {
		t.Fatalf("complete export: %v", err)
	}

	w, env = s.do(t, http.MethodGet, path, aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var link struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(env.Data, &link); err != nil {
		t.Fatalf("decode link: %v", err)
	}
	if !strings.HasSuffix(link.URL, "/a.pdf") {
		t.Fatalf("unexpected url %q", link.URL)
	}
	if signer.lastTTL != exportLinkTTL || signer.lastFilename != "Backend - Go.pdf" {
		t.Fatalf("unexpected presign args ttl=%v filename=%q", signer.lastTTL, signer.lastFilename)
	}

	if w, _ := s.do(t, http.MethodGet, path, bobToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("foreign link: expected 404 got %d", w.Code)
	}
}

func TestExportFilename(t *testing.T) {
	cases := map[string]string{
		"":              "resume.pdf",
		"  CV  ":        "CV.pdf",
		`a"b\c`:         "a-b-c.pdf",
		"Jane's Resume": "Jane's Resume.pdf",
	}
	for in, want := range cases {
		if got := exportFilename(in); got != want {
			t.Errorf("exportFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
