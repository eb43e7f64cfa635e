package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// StatusPublisher announces finished jobs on a redis channel so other
// services can react without polling.
type StatusPublisher struct {
	client  *redis.Client
	channel string
}

type statusNotification struct {
	JobID    string `json:"job_id"`
	VideoURL string `json:"video_url"`
	Status   string `json:"status"`
}

func NewStatusPublisher(client *redis.Client, channel string) *StatusPublisher {
	return &StatusPublisher{client: client, channel: channel}
}

func (p *StatusPublisher) Name() string { return "redis" }

func (p *StatusPublisher) Notify(ctx context.Context, jobID, videoURL string) error {
	payload, err := json.Marshal(statusNotification{
		JobID:    jobID,
		VideoURL: videoURL,
		Status:   "finished",
	})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}
