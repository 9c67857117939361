// Package tasks defines the asynq task types shared by the API and the worker.
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	TypeDocumentExport = "document:export"
)

// NotifyChannel is the Redis pub/sub channel carrying one owner's notifications.
func NotifyChannel(ownerID string) string {
	return "user_notify:" + ownerID
}

// DocumentExportPayload points the worker at a queued export row.
type DocumentExportPayload struct {
	ExportID      uint   `json:"export_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewDocumentExportTask builds the task for one export row.
func NewDocumentExportTask(exportID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(DocumentExportPayload{
		ExportID:      exportID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal export payload: %w", err)
	}
	return asynq.NewTask(TypeDocumentExport, payload), nil
}

// ParseDocumentExportPayload decodes and checks a task payload.
func ParseDocumentExportPayload(task *asynq.Task) (DocumentExportPayload, error) {
	var p DocumentExportPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("unmarshal export payload: %w", err)
	}
	if p.ExportID == 0 {
		return p, fmt.Errorf("export payload: missing export id")
	}
	return p, nil
}
