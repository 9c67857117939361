package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/kemalcalak/Resume-Builder/internal/api/middleware"
	"github.com/kemalcalak/Resume-Builder/internal/database"
	"github.com/kemalcalak/Resume-Builder/internal/document"
	"github.com/kemalcalak/Resume-Builder/internal/tasks"
)

const exportLinkTTL = 5 * time.Minute

// ExportStore is the export bookkeeping slice of *document.Store.
type ExportStore interface {
	QueueExport(ctx context.Context, ownerID, externalID, correlationID string) (*database.Export, *database.Document, error)
	AttachExportTask(ctx context.Context, exportID uint, taskID string) error
	FailExport(ctx context.Context, exportID uint, reason string) error
	LatestExport(ctx context.Context, ownerID, externalID string) (*database.Export, *database.Document, error)
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// LinkSigner is satisfied by *storage.Client.
type LinkSigner interface {
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration, filename string) (string, error)
}

// ExportHandler queues PDF exports and hands out download links.
type ExportHandler struct {
	store    ExportStore
	queue    TaskEnqueuer
	signer   LinkSigner
	maxRetry int
}

func NewExportHandler(store ExportStore, queue TaskEnqueuer, signer LinkSigner, maxRetry int) *ExportHandler {
	return &ExportHandler{store: store, queue: queue, signer: signer, maxRetry: maxRetry}
}

// CreateExport enqueues a PDF export and returns 202 right away.
func (h *ExportHandler) CreateExport(c *gin.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)
	correlationID := middleware.GetCorrelationID(c)

	export, doc, err := h.store.QueueExport(ctx, ownerID, c.Param("documentId"), correlationID)
	if err != nil {
		RespondError(c, err, "failed to queue export")
		return
	}

	task, err := tasks.NewDocumentExportTask(export.ID, correlationID)
	if err != nil {
		h.abandon(c, logger, export.ID, err)
		return
	}
	info, err := h.queue.Enqueue(task, asynq.MaxRetry(h.maxRetry))
	if err != nil {
		h.abandon(c, logger, export.ID, err)
		return
	}
	if err := h.store.AttachExportTask(ctx, export.ID, info.ID); err != nil {
		// The task is queued; only the bookkeeping id is missing.
		logger.Warn("attach export task id failed", slog.Any("error", err))
	}

	logger.Info("document export queued",
		slog.String("document_id", doc.ExternalID),
		slog.Uint64("export_id", uint64(export.ID)),
		slog.String("task_id", info.ID),
	)
	SuccessMessage(c, http.StatusAccepted, "Export request accepted", gin.H{
		"exportId": export.ID,
		"taskId":   info.ID,
	})
}

func (h *ExportHandler) abandon(c *gin.Context, logger *slog.Logger, exportID uint, cause error) {
	logger.Error("enqueue export failed", slog.Any("error", cause))
	if err := h.store.FailExport(c.Request.Context(), exportID, "enqueue failed"); err != nil {
		logger.Error("mark export failed", slog.Any("error", err))
	}
	Internal(c, "failed to enqueue export")
}

// GetExportLink presigns the newest completed export of a document.
func (h *ExportHandler) GetExportLink(c *gin.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	export, doc, err := h.store.LatestExport(c.Request.Context(), ownerID, c.Param("documentId"))
	if err != nil {
		if errors.Is(err, document.ErrExportNotReady) {
			Conflict(c, "export not ready")
			return
		}
		RespondError(c, err, "failed to fetch export")
		return
	}

	url, err := h.signer.GeneratePresignedURL(c.Request.Context(), export.ObjectKey, exportLinkTTL, exportFilename(doc.Title))
	if err != nil {
		middleware.LoggerFromContext(c).Error("presign export failed", slog.Any("error", err))
		Internal(c, "failed to generate download link")
		return
	}
	Success(c, http.StatusOK, gin.H{"url": url})
}

func exportFilename(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', '\r', '\n':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "resume"
	}
	return name + ".pdf"
}
