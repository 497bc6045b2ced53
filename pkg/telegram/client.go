package telegram

import (
	"context"
	"fmt"
	"time"

	"doc-verify-bot/internal/entity"

	"github.com/go-resty/resty/v2"
)

// Client talks to the Telegram Bot API. Messages carry a 10s timeout, file
// metadata and downloads a 30s one.
type Client struct {
	client     *resty.Client
	fileClient *resty.Client
	token      string
	baseURL    string
}

func NewClient(baseURL, token string) *Client {
	client := resty.New()
	client.SetTimeout(10 * time.Second)

	fileClient := resty.New()
	fileClient.SetTimeout(30 * time.Second)

	return &Client{
		client:     client,
		fileClient: fileClient,
		token:      token,
		baseURL:    baseURL,
	}
}

func (c *Client) apiURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

type sendMessageRequest struct {
	ChatId                int64                 `json:"chat_id"`
	Text                  string                `json:"text"`
	ParseMode             string                `json:"parse_mode"`
	DisableWebPagePreview bool                  `json:"disable_web_page_preview"`
	ReplyMarkup           *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

type apiResponse struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

type getFileResponse struct {
	Ok     bool `json:"ok"`
	Result struct {
		FilePath string `json:"file_path"`
	} `json:"result"`
	Description string `json:"description,omitempty"`
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.send(ctx, chatID, text, nil)
}

func (c *Client) SendKeyboard(ctx context.Context, chatID int64, text string, keyboard InlineKeyboardMarkup) error {
	return c.send(ctx, chatID, text, &keyboard)
}

func (c *Client) send(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboardMarkup) error {
	var result apiResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(sendMessageRequest{
			ChatId:                chatID,
			Text:                  text,
			ParseMode:             "HTML",
			DisableWebPagePreview: true,
			ReplyMarkup:           keyboard,
		}).
		SetResult(&result).
		Post(c.apiURL("sendMessage"))
	if err != nil {
		return fmt.Errorf("%w: sendMessage: %v", entity.ErrTransport, err)
	}
	if resp.StatusCode() != 200 || !result.Ok {
		return fmt.Errorf("%w: sendMessage status %d: %s", entity.ErrTransport, resp.StatusCode(), result.Description)
	}
	return nil
}

// GetFilePath resolves a file_id into the server-side path used for
// downloading.
func (c *Client) GetFilePath(ctx context.Context, fileID string) (string, error) {
	var result getFileResponse
	resp, err := c.fileClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{"file_id": fileID}).
		SetResult(&result).
		Post(c.apiURL("getFile"))
	if err != nil {
		return "", fmt.Errorf("%w: getFile: %v", entity.ErrTransport, err)
	}
	if resp.StatusCode() != 200 || !result.Ok {
		return "", fmt.Errorf("%w: getFile status %d: %s", entity.ErrTransport, resp.StatusCode(), result.Description)
	}
	return result.Result.FilePath, nil
}

func (c *Client) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	url := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, filePath)
	resp, err := c.fileClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: download file: %v", entity.ErrTransport, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: download file status %d", entity.ErrTransport, resp.StatusCode())
	}
	return resp.Body(), nil
}
