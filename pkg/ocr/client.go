package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"doc-verify-bot/internal/entity"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
)

// maxAttempts bounds the whole extraction: one initial try plus retries
// after 1s and 2s.
const maxAttempts = 3

type Client struct {
	client   *resty.Client
	apiKey   string
	endpoint string
}

func NewClient(endpoint, apiKey string) *Client {
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &Client{
		client:   client,
		apiKey:   apiKey,
		endpoint: endpoint,
	}
}

type parseResponse struct {
	IsErroredOnProcessing bool `json:"IsErroredOnProcessing"`
	ParsedResults         []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	// ErrorMessage is a string or an array of strings depending on the error.
	ErrorMessage json.RawMessage `json:"ErrorMessage"`
}

// ExtractTextFromURL runs OCR over a stored image. Transport failures and
// engine-side processing errors are both retried with exponential backoff;
// exhaustion surfaces as a transport error.
func (c *Client) ExtractTextFromURL(ctx context.Context, imageURL string) (string, error) {
	var text string

	attempt := func() error {
		var result parseResponse
		resp, err := c.client.R().
			SetContext(ctx).
			SetFormData(map[string]string{
				"apikey":            c.apiKey,
				"url":               imageURL,
				"language":          "rus",
				"isOverlayRequired": "false",
				"OCREngine":         "2",
			}).
			SetResult(&result).
			Post(c.endpoint)
		if err != nil {
			return fmt.Errorf("%w: ocr request: %v", entity.ErrTransport, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("%w: ocr status %d", entity.ErrTransport, resp.StatusCode())
		}
		if result.IsErroredOnProcessing || len(result.ParsedResults) == 0 {
			return fmt.Errorf("%w: ocr processing failed: %s", entity.ErrTransport, string(result.ErrorMessage))
		}
		text = strings.TrimSpace(result.ParsedResults[0].ParsedText)
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(b, maxAttempts-1), ctx))
	if err != nil {
		return "", err
	}
	return text, nil
}
