package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Callback posts the finished video URL to a configured backend.
type Callback struct {
	url    string
	client *http.Client
}

func NewCallback(url string) *Callback {
	return &Callback{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Callback) Name() string { return "callback" }

func (c *Callback) Notify(ctx context.Context, jobID, videoURL string) error {
	body, err := json.Marshal(map[string]string{
		"conversationId": jobID,
		"videoUrl":       videoURL,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("callback http %d", res.StatusCode)
	}
	return nil
}
