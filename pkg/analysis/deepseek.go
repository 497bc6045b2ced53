// Package analysis extracts the four document fields from OCR text with a
// chat-completion model.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// promptTextLimit caps the OCR text passed to the model, in runes.
const promptTextLimit = 3000

type Client struct {
	client   *resty.Client
	apiKey   string
	endpoint string
	model    string
}

func NewClient(endpoint, apiKey, model string) *Client {
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &Client{
		client:   client,
		apiKey:   apiKey,
		endpoint: endpoint,
		model:    model,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// AnalyzeText never fails: any error degrades to an explicit failure string
// so the pipeline still reaches normalization, where every field falls back
// to its sentinel.
func (c *Client) AnalyzeText(ctx context.Context, extractedText string) string {
	if extractedText == "" {
		return "Текст не распознан"
	}

	var result chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    []chatMessage{{Role: "user", Content: buildPrompt(extractedText)}},
			MaxTokens:   800,
			Temperature: 0.1,
		}).
		SetResult(&result).
		Post(c.endpoint)
	if err != nil {
		return fmt.Sprintf("Ошибка: %v", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Sprintf("Ошибка анализа: %d", resp.StatusCode())
	}
	if len(result.Choices) == 0 {
		return "Ошибка анализа: пустой ответ"
	}
	return result.Choices[0].Message.Content
}

func buildPrompt(extractedText string) string {
	if runes := []rune(extractedText); len(runes) > promptTextLimit {
		extractedText = string(runes[:promptTextLimit])
	}

	return fmt.Sprintf(`
ПРОАНАЛИЗИРУЙ этот текст технического документа и извлеки ТОЛЬКО ключевую информацию из ВЕРХНЕЙ ЧАСТИ документа (первые 30%% текста).

ТЕКСТ:
%s

ИЗВЛЕКИ ТОЛЬКО:
1. Участок/цех (только ПЕРВЫЙ указанный участок, обычно в шапке)
2. Наименование изделия (общее название)
3. Номер чертежа (формат типа ТМГ.1000.2234 или ТМГ 2X2K2.250.01.00.00)
4. Номер изделия

ФОРМАТ ОТВЕТА (строго):
Участок: [первый участок из шапки]
Изделие: [наименование изделия]
Номер чертежа: [номер чертежа]
Номер изделия: [номер изделия]

Если что-то не найдено - пиши "не указано"
`, extractedText)
}
