package controller

import (
	"encoding/json"

	"doc-verify-bot/internal/dto"
	"doc-verify-bot/internal/pkg/logger"
	"doc-verify-bot/internal/pkg/serverutils"
	"doc-verify-bot/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	HandleUpdate(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

// webhookController classifies each inbound event and routes it. The
// transport requires a sub-second acknowledgment, so photo events are only
// enqueued here; extraction happens in the worker pool.
type webhookController struct {
	verification service.IVerificationService
	publisher    service.IPublisherService
	logger       logger.ILogger
}

func NewWebhookController(
	verification service.IVerificationService,
	publisher service.IPublisherService,
	log logger.ILogger,
) IWebhookController {
	return &webhookController{
		verification: verification,
		publisher:    publisher,
		logger:       log,
	}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	r.Post("/webhook", c.HandleUpdate)
}

func (c *webhookController) HandleUpdate(ctx *fiber.Ctx) error {
	var update dto.Update
	if err := json.Unmarshal(ctx.Body(), &update); err != nil {
		// Malformed payloads are acked so the transport stops redelivering.
		c.logger.Warn("Webhook", "Unparseable update", map[string]interface{}{"error": err.Error()})
		return ctx.JSON(serverutils.StatusResponse("ok"))
	}

	if update.CallbackQuery != nil {
		if err := c.verification.HandleCallback(ctx.Context(), update.CallbackQuery); err != nil {
			c.logger.Error("Webhook", "Callback handling failed", map[string]interface{}{"error": err.Error()})
			return ctx.JSON(serverutils.StatusResponse("error"))
		}
		return ctx.JSON(serverutils.StatusResponse("callback_processed"))
	}

	if update.Message != nil {
		chatID := update.Message.Chat.Id

		if len(update.Message.Photo) > 0 {
			if err := c.publisher.PublishPhotoTask(chatID, update.Message.Photo); err != nil {
				c.logger.Error("Webhook", "Failed to enqueue photo task", map[string]interface{}{"error": err.Error(), "chat_id": chatID})
				return ctx.JSON(serverutils.StatusResponse("error"))
			}
			return ctx.JSON(serverutils.StatusResponse("photo_processing"))
		}

		if update.Message.Text != "" {
			if err := c.verification.HandleText(ctx.Context(), chatID, update.Message.Text); err != nil {
				c.logger.Error("Webhook", "Text handling failed", map[string]interface{}{"error": err.Error(), "chat_id": chatID})
				return ctx.JSON(serverutils.StatusResponse("error"))
			}
			return ctx.JSON(serverutils.StatusResponse("text_processed"))
		}
	}

	return ctx.JSON(serverutils.StatusResponse("ok"))
}

func (c *webhookController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.Health())
}
