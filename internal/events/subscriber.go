// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

//go:build nats

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
	"github.com/recipefinder/recipefinder/internal/models"
)

// Subscriber wraps a durable JetStream consumer bound to the progress
// stream. New messages only; progress history is not replayed to
// freshly started instances.
type Subscriber struct {
	subscriber message.Subscriber
	logger     watermill.LoggerAdapter
}

// NewSubscriber creates a subscriber bound to cfg.StreamName. Binding
// is required because the consumed topic is the recipes.> wildcard and
// stream names cannot contain wildcards.
func NewSubscriber(cfg *config.NATSConfig, logger watermill.LoggerAdapter) (*Subscriber, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("Subscriber disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("Subscriber reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	subOpts := []natsgo.SubOpt{
		natsgo.MaxDeliver(3),
		natsgo.MaxAckPending(256),
		natsgo.AckWait(30 * time.Second),
		natsgo.DeliverNew(),
		natsgo.BindStream(cfg.StreamName),
	}

	wmConfig := wmNats.SubscriberConfig{
		URL:              cfg.URL,
		SubscribersCount: 1, // progress messages must stay ordered
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     10 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:         false,
			AutoProvision:    false,
			AckAsync:         false,
			SubscribeOptions: subOpts,
			DurablePrefix:    "recipefinder-progress",
		},
	}

	sub, err := wmNats.NewSubscriber(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	return &Subscriber{subscriber: sub, logger: logger}, nil
}

// Subscribe returns the message channel for a topic. Closed when ctx
// is canceled or the subscriber closes.
func (s *Subscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return s.subscriber.Subscribe(ctx, topic)
}

// Close shuts down the subscriber.
func (s *Subscriber) Close() error {
	return s.subscriber.Close()
}

// Broadcaster receives deserialized progress events. Satisfied by
// *websocket.Hub.
type Broadcaster interface {
	NotifyIndexProgress(stats models.IndexStats, completed bool)
	NotifyImportProgress(stats models.ImportStats, completed bool)
}

// Bridge consumes the progress stream and forwards events to a
// Broadcaster. It is the consumer half of multi-instance progress
// fan-out: every instance runs a bridge so its WebSocket clients see
// runs started on any instance.
type Bridge struct {
	subscriber *Subscriber
	target     Broadcaster
	serializer *Serializer
	events     *logging.EventLogger
}

// NewBridge wires a subscriber to a broadcaster.
func NewBridge(subscriber *Subscriber, target Broadcaster) *Bridge {
	return &Bridge{
		subscriber: subscriber,
		target:     target,
		serializer: NewSerializer(),
		events:     logging.NewEventLogger(),
	}
}

// Run consumes recipes.> until ctx is canceled. Malformed payloads are
// acked and counted; redelivering them cannot make them parse.
func (b *Bridge) Run(ctx context.Context) error {
	messages, err := b.subscriber.Subscribe(ctx, SubjectWildcard)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", SubjectWildcard, err)
	}
	b.events.LogSubscriptionStarted(SubjectWildcard, "recipefinder-progress")
	defer b.events.LogSubscriptionStopped(SubjectWildcard)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.processMessage(msg)
		}
	}
}

func (b *Bridge) processMessage(msg *message.Message) {
	start := time.Now()
	metrics.RecordNATSConsume()

	event, err := b.serializer.Unmarshal(msg.Payload)
	if err != nil {
		metrics.RecordNATSParseFailed()
		b.events.LogEventFailed(msg.Context(), msg.UUID, err)
		msg.Ack()
		return
	}
	b.events.LogEventReceived(msg.Context(), event.EventID, event.Topic())

	switch event.Type {
	case TypeIndexProgress:
		b.target.NotifyIndexProgress(*event.Index, false)
	case TypeIndexCompleted:
		b.target.NotifyIndexProgress(*event.Index, true)
	case TypeImportCompleted:
		b.target.NotifyImportProgress(*event.Import, true)
	}

	metrics.RecordNATSProcessed()
	metrics.RecordNATSProcessingDuration(time.Since(start))
	msg.Ack()
}
