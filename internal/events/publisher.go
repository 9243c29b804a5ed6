// Package events publishes domain action events for the external
// notification system and records gated-action metrics.
package events

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/klauspost/compress/zstd"

	"siport/internal/types"
)

// compressThreshold is the payload size above which event bodies are
// zstd-compressed before sending. SQS caps messages at 256 KiB; appointment
// events with long notes can approach it.
const compressThreshold = 64 << 10 // 64 KiB

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher sends ActionEvents to the notification queue consumed by the
// external notification system. It implements types.EventSink.
//
// Delivery is at-least-once from the consumer's perspective; the Action Gate
// treats publishing as best effort and never fails an action on a publish
// error.
type Publisher struct {
	client   SQSSender
	queueURL string
	encoder  *zstd.Encoder
	logger   *slog.Logger
}

// NewPublisher creates a Publisher targeting the given SQS queue.
func NewPublisher(client SQSSender, queueURL string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("events: failed to create zstd encoder: %w", err)
	}
	return &Publisher{
		client:   client,
		queueURL: queueURL,
		encoder:  enc,
		logger:   logger,
	}, nil
}

var _ types.EventSink = (*Publisher)(nil)

// Publish serializes the event and sends it to the notification queue.
// Bodies above compressThreshold are zstd-compressed and base64-encoded,
// flagged with a content_encoding message attribute so the consumer knows
// to decompress.
func (p *Publisher) Publish(ctx context.Context, event types.ActionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: failed to marshal event: %w", err)
	}

	encoding := "identity"
	payload := string(body)
	if len(body) > compressThreshold {
		compressed := p.encoder.EncodeAll(body, nil)
		payload = base64.StdEncoding.EncodeToString(compressed)
		encoding = "zstd+base64"
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(payload),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Type)),
			},
			"content_encoding": {
				DataType:    aws.String("String"),
				StringValue: aws.String(encoding),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("events: failed to send %s event: %w", event.Type, err)
	}

	p.logger.Debug("action event published",
		"type", string(event.Type),
		"entity_id", event.EntityID,
		"encoding", encoding,
	)
	return nil
}
