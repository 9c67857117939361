package tasks

import (
	"testing"

	"github.com/hibiken/asynq"
)

func TestDocumentExportTask(t *testing.T) {
	task, err := NewDocumentExportTask(42, "corr-1")
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TypeDocumentExport {
		t.Fatalf("unexpected type %q", task.Type())
	}

	p, err := ParseDocumentExportPayload(task)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.ExportID != 42 || p.CorrelationID != "corr-1" {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestParseDocumentExportPayload_Invalid(t *testing.T) {
	for _, raw := range []string{"not json", `{"correlation_id":"x"}`} {
		if _, err := ParseDocumentExportPayload(asynq.NewTask(TypeDocumentExport, []byte(raw))); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
