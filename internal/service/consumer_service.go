package service

import (
	"context"
	"encoding/json"

	"doc-verify-bot/internal/dto"
	"doc-verify-bot/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the photo topic with a fixed pool of workers.
// The pool bounds how many extractions run concurrently: excess photo
// events queue up instead of spawning unbounded work.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	workers    int
	extraction IExtractionService
	logger     logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	workers int,
	extraction IExtractionService,
	log logger.ILogger,
) IConsumerService {
	if workers < 1 {
		workers = 1
	}
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		workers:    workers,
		extraction: extraction,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	for i := 0; i < cs.workers; i++ {
		go func() {
			for msg := range messages {
				cs.processMessage(ctx, msg)
			}
		}()
	}

	cs.logger.Info("Consumer", "Photo workers started", map[string]interface{}{"workers": cs.workers, "topic": cs.topicName})
	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PhotoTaskMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal photo task", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid payloads are never retriable
		return
	}

	if err := cs.extraction.ProcessPhoto(ctx, payload.ChatId, payload.Photos); err != nil {
		// The pipeline already told the user; redelivery would only repeat
		// the failure messages.
		cs.logger.Error("Consumer", "Photo task failed", map[string]interface{}{"error": err.Error(), "chat_id": payload.ChatId})
	}
	msg.Ack()
}
