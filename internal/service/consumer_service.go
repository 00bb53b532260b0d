package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"brd-discovery-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	brdService IBRDService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	brdService IBRDService,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		brdService: brdService,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.DiscoveryCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal discovery completion: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Generating BRD for session %s", payload.SessionId)

	if _, err := cs.brdService.Generate(ctx, payload.SessionId); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			log.Printf("[ERROR] Session not found: %s", payload.SessionId)
			msg.Ack() // Session deleted? Ack.
			return
		}
		log.Printf("[ERROR] BRD generation failed for session %s: %v", payload.SessionId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	log.Printf("[INFO] BRD generated for session %s", payload.SessionId)
	msg.Ack()
}
