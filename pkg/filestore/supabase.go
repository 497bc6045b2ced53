// Package filestore stores document images in a Supabase-storage-compatible
// object store and serves them back over public URLs for the OCR engine.
package filestore

import (
	"context"
	"fmt"
	"time"

	"doc-verify-bot/internal/entity"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	client     *resty.Client
	baseURL    string
	serviceKey string
	bucket     string
}

func NewClient(baseURL, serviceKey, bucket string) *Client {
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &Client{
		client:     client,
		baseURL:    baseURL,
		serviceKey: serviceKey,
		bucket:     bucket,
	}
}

func (c *Client) Upload(ctx context.Context, path string, content []byte, contentType string) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, path)
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.serviceKey).
		SetHeader("Content-Type", contentType).
		SetBody(content).
		Post(url)
	if err != nil {
		return fmt.Errorf("%w: upload %s: %v", entity.ErrTransport, path, err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: upload %s status %d: %s", entity.ErrTransport, path, resp.StatusCode(), resp.String())
	}
	return nil
}

// PublicURL returns the fetchable URL of a stored object. The bucket must be
// public for the OCR engine to read it.
func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, path)
}
