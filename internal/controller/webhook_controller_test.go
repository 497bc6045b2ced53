package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"doc-verify-bot/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type fakeVerification struct {
	callbacks []string
	texts     []string
	err       error
}

func (f *fakeVerification) HandleCallback(_ context.Context, query *dto.CallbackQuery) error {
	f.callbacks = append(f.callbacks, query.Data)
	return f.err
}

func (f *fakeVerification) HandleText(_ context.Context, _ int64, text string) error {
	f.texts = append(f.texts, text)
	return f.err
}

type fakePublisher struct {
	published []int64
	err       error
}

func (f *fakePublisher) PublishPhotoTask(chatID int64, _ []dto.PhotoSize) error {
	f.published = append(f.published, chatID)
	return f.err
}

func newTestApp(verification *fakeVerification, publisher *fakePublisher) *fiber.App {
	app := fiber.New()
	c := NewWebhookController(verification, publisher, nopLogger{})
	app.Get("/health", c.Health)
	c.RegisterRoutes(app.Group("/api"))
	return app
}

func postUpdate(t *testing.T, app *fiber.App, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var ack struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(raw, &ack))
	return resp.StatusCode, ack.Status
}

func TestWebhookRoutesCallback(t *testing.T) {
	verification := &fakeVerification{}
	app := newTestApp(verification, &fakePublisher{})

	body := `{"update_id":1,"callback_query":{"id":"cb1","from":{"id":1,"username":"tester"},"message":{"message_id":10,"chat":{"id":100}},"data":"verify_ok_abc"}}`
	code, status := postUpdate(t, app, body)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "callback_processed", status)
	require.Len(t, verification.callbacks, 1)
	assert.Equal(t, "verify_ok_abc", verification.callbacks[0])
}

func TestWebhookRoutesPhoto(t *testing.T) {
	publisher := &fakePublisher{}
	app := newTestApp(&fakeVerification{}, publisher)

	body := `{"update_id":2,"message":{"message_id":11,"chat":{"id":100},"photo":[{"file_id":"a","width":90,"height":60},{"file_id":"b","width":800,"height":600}]}}`
	code, status := postUpdate(t, app, body)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "photo_processing", status)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, int64(100), publisher.published[0])
}

func TestWebhookRoutesText(t *testing.T) {
	verification := &fakeVerification{}
	app := newTestApp(verification, &fakePublisher{})

	body := `{"update_id":3,"message":{"message_id":12,"chat":{"id":100},"text":"ТМГ.500.01"}}`
	code, status := postUpdate(t, app, body)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "text_processed", status)
	require.Len(t, verification.texts, 1)
	assert.Equal(t, "ТМГ.500.01", verification.texts[0])
}

func TestWebhookIgnoresOtherShapes(t *testing.T) {
	verification := &fakeVerification{}
	publisher := &fakePublisher{}
	app := newTestApp(verification, publisher)

	// a sticker-only message carries neither photo nor text
	body := `{"update_id":4,"message":{"message_id":13,"chat":{"id":100}}}`
	code, status := postUpdate(t, app, body)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "ok", status)
	assert.Empty(t, verification.callbacks)
	assert.Empty(t, verification.texts)
	assert.Empty(t, publisher.published)
}

func TestWebhookAcksMalformedBody(t *testing.T) {
	app := newTestApp(&fakeVerification{}, &fakePublisher{})

	code, status := postUpdate(t, app, `{not json`)

	// the transport must never be given a reason to redeliver
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "ok", status)
}

func TestWebhookAcksHandlerFailure(t *testing.T) {
	verification := &fakeVerification{err: errors.New("boom")}
	app := newTestApp(verification, &fakePublisher{})

	body := `{"update_id":5,"message":{"message_id":14,"chat":{"id":100},"text":"hi"}}`
	code, status := postUpdate(t, app, body)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "error", status)
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(&fakeVerification{}, &fakePublisher{})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var health struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	require.NoError(t, json.Unmarshal(raw, &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "telegram-bot", health.Service)
}
