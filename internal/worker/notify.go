package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kemalcalak/Resume-Builder/internal/tasks"
)

// ExportNotifyMessage is pushed over Redis pub/sub and relayed to the owner's websocket.
type ExportNotifyMessage struct {
	Type          string `json:"type"`
	Status        string `json:"status"`
	ExportID      uint   `json:"export_id"`
	DocumentID    string `json:"document_id"`
	CorrelationID string `json:"correlation_id"`
	ErrorCode     int    `json:"error_code"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// Publisher is the slice of *redis.Client used for notifications.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

func publishNotify(ctx context.Context, pub Publisher, ownerID string, msg ExportNotifyMessage) error {
	msg.Type = "export"
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := tasks.NotifyChannel(ownerID)
	if err := pub.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}
