package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kemalcalak/Resume-Builder/internal/database"
	"github.com/kemalcalak/Resume-Builder/internal/document"
	"github.com/kemalcalak/Resume-Builder/internal/tasks"
)

type fakeStorage struct {
	uploaded map[string][]byte
	deleted  []string
	err      error
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	b, _ := io.ReadAll(reader)
	s.uploaded[objectName] = b
	return &minio.UploadInfo{Key: objectName}, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	delete(s.uploaded, objectKey)
	return nil
}

type published struct {
	channel string
	msg     ExportNotifyMessage
}

type fakePublisher struct{ messages []published }

func (p *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	var msg ExportNotifyMessage
	_ = json.Unmarshal(message.([]byte), &msg)
	p.messages = append(p.messages, published{channel: channel, msg: msg})
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(1)
	return cmd
}

type fakeRenderer struct {
	err   error
	calls int
}

func (r *fakeRenderer) Render(_ context.Context, doc *database.Document) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.7 " + doc.Title), nil
}

type fixture struct {
	db        *gorm.DB
	docs      *document.Store
	storage   *fakeStorage
	publisher *fakePublisher
	renderer  *fakeRenderer
	handler   *ExportTaskHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		db:        db,
		docs:      document.NewStore(db, quiet),
		storage:   &fakeStorage{uploaded: map[string][]byte{}},
		publisher: &fakePublisher{},
		renderer:  &fakeRenderer{},
	}
	f.handler = NewExportTaskHandler(db, f.docs, f.storage, f.publisher, f.renderer, quiet)
	return f
}

func (f *fixture) queue(t *testing.T, ownerID string) (*database.Document, *asynq.Task, database.Export) {
	t.Helper()
	doc, err := f.docs.CreateDocument(context.Background(), document.Owner{ID: ownerID}, "Backend CV")
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	export := database.Export{DocumentID: doc.ID, OwnerID: ownerID, Status: database.ExportQueued}
	if err := f.db.Create(&export).Error; err != nil {
		t.Fatalf("create export: %v", err)
	}
	task, err := tasks.NewDocumentExportTask(export.ID, "corr-1")
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	return doc, task, export
}

func TestProcessTask_Completes(t *testing.T) {
	f := newFixture(t)
	doc, task, export := f.queue(t, "kp_1")

	if err := f.handler.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("process: %v", err)
	}

	var got database.Export
	if err := f.db.First(&got, export.ID).Error; err != nil {
		t.Fatalf("reload export: %v", err)
	}
	if got.Status != database.ExportCompleted {
		t.Fatalf("status = %q", got.Status)
	}
	if !strings.HasPrefix(got.ObjectKey, "exports/kp_1/"+doc.ExternalID+"/") {
		t.Fatalf("unexpected object key %q", got.ObjectKey)
	}
	if _, ok := f.storage.uploaded[got.ObjectKey]; !ok {
		t.Fatal("pdf was not uploaded")
	}
	if got.Meta["correlation_id"] != "corr-1" {
		t.Fatalf("meta = %v", got.Meta)
	}

	if len(f.publisher.messages) != 1 {
		t.Fatalf("expected one notification, got %d", len(f.publisher.messages))
	}
	m := f.publisher.messages[0]
	if m.channel != "user_notify:kp_1" || m.msg.Status != database.ExportCompleted || m.msg.DocumentID != doc.ExternalID {
		t.Fatalf("unexpected notification %+v", m)
	}

	// Redelivery of a settled export is a no-op.
	if err := f.handler.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("reprocess: %v", err)
	}
	if f.renderer.calls != 1 {
		t.Fatalf("renderer called %d times", f.renderer.calls)
	}
}

func TestProcessTask_ReplacesPreviousExport(t *testing.T) {
	f := newFixture(t)
	doc, task, _ := f.queue(t, "kp_1")
	if err := f.handler.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("first export: %v", err)
	}
	var first database.Export
	f.db.Where("document_id = ?", doc.ID).First(&first)

	second := database.Export{DocumentID: doc.ID, OwnerID: "kp_1", Status: database.ExportQueued}
	f.db.Create(&second)
	task2, _ := tasks.NewDocumentExportTask(second.ID, "corr-2")
	if err := f.handler.ProcessTask(context.Background(), task2); err != nil {
		t.Fatalf("second export: %v", err)
	}

	if len(f.storage.deleted) != 1 || f.storage.deleted[0] != first.ObjectKey {
		t.Fatalf("expected previous object deleted, got %v", f.storage.deleted)
	}
	if len(f.storage.uploaded) != 1 {
		t.Fatalf("expected one stored pdf, got %d", len(f.storage.uploaded))
	}
}

func TestProcessTask_RenderFailure(t *testing.T) {
	f := newFixture(t)
	_, task, export := f.queue(t, "kp_1")
	f.renderer.err = errors.New("chromium crashed")

	f.handler.isFinalAttempt = func(context.Context) bool { return false }
	if err := f.handler.ProcessTask(context.Background(), task); err == nil {
		t.Fatal("expected error so asynq retries")
	}
	if len(f.publisher.messages) != 0 {
		t.Fatal("no notification before the final attempt")
	}

	f.handler.isFinalAttempt = func(context.Context) bool { return true }
	if err := f.handler.ProcessTask(context.Background(), task); err == nil {
		t.Fatal("expected error on final attempt")
	}

	var got database.Export
	f.db.First(&got, export.ID)
	if got.Status != database.ExportFailed {
		t.Fatalf("status = %q", got.Status)
	}
	if len(f.publisher.messages) != 1 || f.publisher.messages[0].msg.Status != "error" {
		t.Fatalf("expected one error notification, got %+v", f.publisher.messages)
	}
	if !strings.Contains(f.publisher.messages[0].msg.ErrorMessage, "chromium crashed") {
		t.Fatalf("error message = %q", f.publisher.messages[0].msg.ErrorMessage)
	}
}

func TestProcessTask_MissingExportOrPayload(t *testing.T) {
	f := newFixture(t)

	task, _ := tasks.NewDocumentExportTask(999, "corr")
	if err := f.handler.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("missing export should be skipped, got %v", err)
	}

	err := f.handler.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeDocumentExport, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}
