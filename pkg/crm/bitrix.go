// Package crm submits confirmed records to a Bitrix24 smart-process item.
package crm

import (
	"context"
	"fmt"
	"time"

	"doc-verify-bot/internal/entity"
	"doc-verify-bot/internal/pkg/logger"
	"doc-verify-bot/internal/repository/contract"

	"github.com/go-resty/resty/v2"
)

// Externally defined user-field ids of the target smart process.
const (
	fieldIDDrawingNumber = "ufCrm28_1737543613"
	fieldIDSection       = "ufCrm28_1753194216"
	fieldIDItem          = "ufCrm28_1753194194"
	fieldIDItemNumber    = "ufCrm28_1736772873"
)

type Client struct {
	client       *resty.Client
	webhookURL   string
	entityTypeID int
	audit        contract.AuditRepository
	logger       logger.ILogger
}

func NewClient(webhookURL string, entityTypeID int, audit contract.AuditRepository, log logger.ILogger) *Client {
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &Client{
		client:       client,
		webhookURL:   webhookURL,
		entityTypeID: entityTypeID,
		audit:        audit,
		logger:       log,
	}
}

// Submit maps the four fields onto the external schema and returns the
// created item id. Every outcome lands in the audit trail; a missing id in
// an HTTP 200, an HTTP error and a transport exception all come back as an
// error the caller treats as a soft failure.
func (c *Client) Submit(ctx context.Context, fields entity.Fields, chatID int64, username string) (string, error) {
	request := map[string]interface{}{
		"entityTypeId": c.entityTypeID,
		"fields": map[string]interface{}{
			fieldIDDrawingNumber: fields.DrawingNumber,
			fieldIDSection:       fields.Section,
			fieldIDItem:          fields.Item,
			fieldIDItemNumber:    fields.ItemNumber,
		},
	}

	c.logger.Info("CRM", "Submitting record", map[string]interface{}{
		"chat_id":  chatID,
		"username": username,
	})

	var response map[string]interface{}
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post(c.webhookURL)
	if err != nil {
		c.recordAudit(ctx, request, map[string]interface{}{"error": err.Error()}, "exception")
		return "", fmt.Errorf("%w: crm submit: %v", entity.ErrTransport, err)
	}

	status := "success"
	if resp.StatusCode() != 200 {
		status = "error"
	}
	c.recordAudit(ctx, request, response, status)

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("%w: crm status %d", entity.ErrTransport, resp.StatusCode())
	}

	itemID := extractItemID(response["result"])
	if itemID == "" {
		c.logger.Error("CRM", "Submission accepted but no item id in response", map[string]interface{}{
			"error": response["error"],
		})
		return "", fmt.Errorf("%w: crm response carried no item id", entity.ErrTransport)
	}
	return itemID, nil
}

func (c *Client) recordAudit(ctx context.Context, request, response map[string]interface{}, status string) {
	if err := c.audit.RecordCRMSubmission(ctx, request, response, status); err != nil {
		c.logger.Error("CRM", "Failed to write audit entry", map[string]interface{}{"error": err.Error()})
	}
}

// extractItemID digs the created item id out of the known response shapes:
// {"result": {"item": {"id": N}}}, {"result": {"id": N}} or a bare scalar.
func extractItemID(result interface{}) string {
	switch v := result.(type) {
	case map[string]interface{}:
		if item, ok := v["item"].(map[string]interface{}); ok {
			if id, ok := item["id"]; ok {
				return scalarToString(id)
			}
		}
		if id, ok := v["id"]; ok {
			return scalarToString(id)
		}
	case string, float64, int, int64:
		return scalarToString(v)
	}
	return ""
}

func scalarToString(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	case int:
		return fmt.Sprintf("%d", id)
	case int64:
		return fmt.Sprintf("%d", id)
	}
	return ""
}
