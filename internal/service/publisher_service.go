package service

import (
	"encoding/json"

	"doc-verify-bot/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	// PublishPhotoTask enqueues one photo event for asynchronous
	// extraction. The caller acks the webhook without waiting.
	PublishPhotoTask(chatID int64, photos []dto.PhotoSize) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (s *publisherService) PublishPhotoTask(chatID int64, photos []dto.PhotoSize) error {
	payload, err := json.Marshal(dto.PhotoTaskMessage{
		ChatId: chatID,
		Photos: photos,
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return s.pubSub.Publish(s.topicName, msg)
}
