package service

import (
	"context"

	"doc-verify-bot/internal/entity"
	"doc-verify-bot/pkg/telegram"
)

// Interface handles for the external collaborators. Concrete clients live
// under pkg/ and are injected at construction so tests can substitute
// doubles.

// ChatGateway delivers user-visible messages and fetches uploaded files.
type ChatGateway interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendKeyboard(ctx context.Context, chatID int64, text string, keyboard telegram.InlineKeyboardMarkup) error
	GetFilePath(ctx context.Context, fileID string) (string, error)
	DownloadFile(ctx context.Context, filePath string) ([]byte, error)
}

// FileStore persists the downloaded image and serves it back over a URL
// the OCR engine can fetch.
type FileStore interface {
	Upload(ctx context.Context, path string, content []byte, contentType string) error
	PublicURL(path string) string
}

// TextExtractor is the OCR engine. Retry discipline lives behind this
// boundary.
type TextExtractor interface {
	ExtractTextFromURL(ctx context.Context, imageURL string) (string, error)
}

// FieldAnalyzer turns raw OCR text into "Label: value" lines. It degrades
// to a failure string instead of returning an error.
type FieldAnalyzer interface {
	AnalyzeText(ctx context.Context, text string) string
}

// CRMSubmitter forwards a confirmed record. An error is a soft failure:
// the workflow completes either way.
type CRMSubmitter interface {
	Submit(ctx context.Context, fields entity.Fields, chatID int64, username string) (string, error)
}
