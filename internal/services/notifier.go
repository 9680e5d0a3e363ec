package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"coursegen-backend/internal/models"
)

// Publisher is the slice of the redis client the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Notifier fans job progress out to the websocket hub through redis pub/sub.
type Notifier struct {
	redis  Publisher
	logger *zap.Logger
}

func NewNotifier(redisClient Publisher, logger *zap.Logger) *Notifier {
	return &Notifier{redis: redisClient, logger: logger}
}

func UpdatesChannel(ownerID string) string {
	return fmt.Sprintf("user_updates:%s", ownerID)
}

// PublishUpdate sends a WebSocket update via Redis pub/sub
func (n *Notifier) PublishUpdate(ctx context.Context, ownerID string, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		n.logger.Error("failed to encode ws message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	if err := n.redis.Publish(ctx, UpdatesChannel(ownerID), string(data)).Err(); err != nil {
		n.logger.Warn("failed to publish update", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

func (n *Notifier) Status(ctx context.Context, ownerID, jobID string, step int, name string) {
	n.PublishUpdate(ctx, ownerID, models.WSMessage{
		Type:    "status_update",
		Payload: models.StatusUpdate{JobID: jobID, Step: step, StepName: name},
	})
}

func (n *Notifier) Completed(ctx context.Context, ownerID, jobID, resultID string, kind models.OutputKind) {
	n.PublishUpdate(ctx, ownerID, models.WSMessage{
		Type:    "completed",
		Payload: models.CompletedEvent{JobID: jobID, ResultID: resultID, ResultType: kind},
	})
}

func (n *Notifier) Failed(ctx context.Context, ownerID, jobID, code, message string) {
	n.PublishUpdate(ctx, ownerID, models.WSMessage{
		Type:    "error",
		Payload: models.ErrorEvent{JobID: jobID, ErrorCode: code, ErrorMessage: message},
	})
}
