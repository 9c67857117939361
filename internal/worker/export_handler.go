// Package worker consumes export tasks: it prints a document to PDF, stores it
// and notifies the owner.
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kemalcalak/Resume-Builder/internal/database"
	"github.com/kemalcalak/Resume-Builder/internal/document"
	"github.com/kemalcalak/Resume-Builder/internal/errcode"
	"github.com/kemalcalak/Resume-Builder/internal/storage"
	"github.com/kemalcalak/Resume-Builder/internal/tasks"
)

// ObjectStore is the slice of *storage.Client the worker writes through.
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// DocumentRenderer turns a document tree into PDF bytes.
type DocumentRenderer interface {
	Render(ctx context.Context, doc *database.Document) ([]byte, error)
}

// ExportTaskHandler processes document:export tasks.
type ExportTaskHandler struct {
	db        *gorm.DB
	docs      *document.Store
	storage   ObjectStore
	publisher Publisher
	renderer  DocumentRenderer
	logger    *slog.Logger

	isFinalAttempt func(ctx context.Context) bool
}

// NewExportTaskHandler wires the handler.
func NewExportTaskHandler(db *gorm.DB, docs *document.Store, store ObjectStore, publisher Publisher, renderer DocumentRenderer, logger *slog.Logger) *ExportTaskHandler {
	return &ExportTaskHandler{
		db:             db,
		docs:           docs,
		storage:        store,
		publisher:      publisher,
		renderer:       renderer,
		logger:         logger,
		isFinalAttempt: isFinalAsynqAttempt,
	}
}

// ProcessTask implements asynq.Handler.
func (h *ExportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	payload, err := tasks.ParseDocumentExportPayload(t)
	if err != nil {
		h.logger.Error("invalid export payload", slog.Any("error", err))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("export_id", uint64(payload.ExportID)),
	)

	var export database.Export
	if err := h.db.WithContext(ctx).First(&export, payload.ExportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("export not found, skipping task")
			return nil
		}
		return fmt.Errorf("load export: %w", err)
	}
	if export.Status != database.ExportQueued {
		log.Info("export already settled, skipping task", slog.String("status", export.Status))
		return nil
	}
	log = log.With(slog.String("owner_id", export.OwnerID))

	doc, err := h.docs.GetDocumentByID(ctx, export.OwnerID, export.DocumentID)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			log.Warn("document gone, failing export")
			h.fail(ctx, log, &export, "", payload.CorrelationID, errcode.NotFound, "document not found")
			return nil
		}
		return fmt.Errorf("load document: %w", err)
	}

	defer func() {
		if retErr == nil || !h.isFinalAttempt(ctx) {
			return
		}
		h.fail(ctx, log, &export, doc.ExternalID, payload.CorrelationID, errcode.SystemError, strings.TrimSpace(retErr.Error()))
	}()

	log.Info("rendering document export", slog.String("document_id", doc.ExternalID))
	data, err := h.renderer.Render(ctx, doc)
	if err != nil {
		log.Error("render pdf failed", slog.Any("error", err))
		return fmt.Errorf("render pdf: %w", err)
	}

	objectKey := storage.ExportObjectKey(export.OwnerID, doc.ExternalID)
	if _, err := h.storage.UploadFile(ctx, objectKey, bytes.NewReader(data), int64(len(data)), "application/pdf"); err != nil {
		log.Error("upload pdf failed", slog.Any("error", err))
		return fmt.Errorf("upload pdf: %w", err)
	}

	var previous []database.Export
	if err := h.db.WithContext(ctx).
		Where("document_id = ? AND status = ? AND object_key <> ''", export.DocumentID, database.ExportCompleted).
		Find(&previous).Error; err != nil {
		return fmt.Errorf("load previous exports: %w", err)
	}

	meta := datatypes.JSONMap{
		"size_bytes":     len(data),
		"correlation_id": payload.CorrelationID,
	}
	if err := h.db.WithContext(ctx).Model(&export).Updates(map[string]any{
		"status":     database.ExportCompleted,
		"object_key": objectKey,
		"meta":       meta,
	}).Error; err != nil {
		_ = h.storage.DeleteObject(ctx, objectKey)
		return fmt.Errorf("mark export completed: %w", err)
	}

	for _, prev := range previous {
		if err := h.storage.DeleteObject(ctx, prev.ObjectKey); err != nil {
			log.Warn("delete previous export failed", slog.String("object_key", prev.ObjectKey), slog.Any("error", err))
			continue
		}
		h.db.WithContext(ctx).Model(&database.Export{}).Where("id = ?", prev.ID).Update("object_key", "")
	}

	notify := ExportNotifyMessage{
		Status:        database.ExportCompleted,
		ExportID:      export.ID,
		DocumentID:    doc.ExternalID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if err := publishNotify(ctx, h.publisher, export.OwnerID, notify); err != nil {
		// The export is stored; the client can still fetch the link.
		log.Warn("publish export notification failed", slog.Any("error", err))
	}

	log.Info("document export completed", slog.Int("size_bytes", len(data)))
	return nil
}

func (h *ExportTaskHandler) fail(ctx context.Context, log *slog.Logger, export *database.Export, documentID, correlationID string, code int, reason string) {
	meta := datatypes.JSONMap{"correlation_id": correlationID, "error": reason}
	if err := h.db.WithContext(ctx).Model(export).Updates(map[string]any{
		"status": database.ExportFailed,
		"meta":   meta,
	}).Error; err != nil {
		log.Error("mark export failed", slog.Any("error", err))
	}

	notify := ExportNotifyMessage{
		Status:        "error",
		ExportID:      export.ID,
		DocumentID:    documentID,
		CorrelationID: correlationID,
		ErrorCode:     code,
		ErrorMessage:  reason,
	}
	if err := publishNotify(ctx, h.publisher, export.OwnerID, notify); err != nil {
		log.Error("publish export error notification failed", slog.Any("error", err))
	}
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
