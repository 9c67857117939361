package document

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kemalcalak/Resume-Builder/internal/database"
)

// ErrExportNotReady means the document has no completed export with a stored object.
var ErrExportNotReady = errors.New("export not ready")

// QueueExport records a queued export for the caller's document.
func (s *Store) QueueExport(ctx context.Context, ownerID, externalID, correlationID string) (*database.Export, *database.Document, error) {
	doc, err := s.GetDocument(ctx, ownerID, externalID)
	if err != nil {
		return nil, nil, err
	}

	export := database.Export{
		DocumentID: doc.ID,
		OwnerID:    ownerID,
		Status:     database.ExportQueued,
		Meta:       datatypes.JSONMap{"correlation_id": correlationID},
	}
	if err := s.db.WithContext(ctx).Create(&export).Error; err != nil {
		return nil, nil, fmt.Errorf("create export: %w", err)
	}
	return &export, doc, nil
}

// AttachExportTask stores the queue task id on an export.
func (s *Store) AttachExportTask(ctx context.Context, exportID uint, taskID string) error {
	if err := s.db.WithContext(ctx).Model(&database.Export{}).
		Where("id = ?", exportID).
		Update("task_id", taskID).Error; err != nil {
		return fmt.Errorf("attach export task: %w", err)
	}
	return nil
}

// FailExport marks an export failed with a reason.
func (s *Store) FailExport(ctx context.Context, exportID uint, reason string) error {
	if err := s.db.WithContext(ctx).Model(&database.Export{}).
		Where("id = ?", exportID).
		Updates(map[string]any{
			"status": database.ExportFailed,
			"meta":   datatypes.JSONMap{"error": reason},
		}).Error; err != nil {
		return fmt.Errorf("fail export: %w", err)
	}
	return nil
}

// LatestExport returns the newest completed export of the caller's document
// that still has a stored object.
func (s *Store) LatestExport(ctx context.Context, ownerID, externalID string) (*database.Export, *database.Document, error) {
	var doc database.Document
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND external_id = ?", ownerID, externalID).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("load document: %w", err)
	}

	var export database.Export
	err = s.db.WithContext(ctx).
		Where("document_id = ? AND status = ? AND object_key <> ''", doc.ID, database.ExportCompleted).
		Order("id DESC").
		First(&export).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrExportNotReady
		}
		return nil, nil, fmt.Errorf("load export: %w", err)
	}
	return &export, &doc, nil
}
