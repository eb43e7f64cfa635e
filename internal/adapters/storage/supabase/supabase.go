// Package supabase implements ports.StorageProvider against the
// Supabase storage REST API.
package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"manimrunner/internal/ports"
)

type Client struct {
	baseURL string
	apiKey  string
	bucket  string
	httpc   *http.Client
}

func New(baseURL, apiKey, bucket string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		bucket:  bucket,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Provider() string { return "supabase" }

func (c *Client) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object_key is required")
	}

	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, in.ObjectKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, in.Reader)
	if err != nil {
		return ports.PutObjectOutput{}, err
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")
	if in.Size > 0 {
		req.ContentLength = in.Size
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("supabase upload failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return ports.PutObjectOutput{}, fmt.Errorf("supabase upload http %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	return ports.PutObjectOutput{
		ObjectKey: in.ObjectKey,
		URL:       fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, in.ObjectKey),
		Size:      in.Size,
	}, nil
}
