package events

import (
	"fmt"
	"time"

	"cineMatch/pkg/config"
	"cineMatch/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
)

func natsOptions() []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}
}

// NewNatsSubscriber creates the durable JetStream subscriber for the
// preferences topic. The queue group load-balances events across instances.
func NewNatsSubscriber(cfg config.NatsConfig) (message.Subscriber, error) {
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		AckWaitTimeout:   30 * time.Second,
		NatsOptions:      natsOptions(),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			DurablePrefix: cfg.DurableName,
		},
	}, watermillLogger{})
	if err != nil {
		return nil, fmt.Errorf("failed to create nats subscriber: %w", err)
	}

	return sub, nil
}

func NewNatsPublisher(cfg config.NatsConfig) (message.Publisher, error) {
	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOptions(),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
		},
	}, watermillLogger{})
	if err != nil {
		return nil, fmt.Errorf("failed to create nats publisher: %w", err)
	}

	return pub, nil
}

// watermillLogger routes watermill's internal logging through pkg/logger.
type watermillLogger struct {
	fields watermill.LogFields
}

func (l watermillLogger) args(fields watermill.LogFields) []any {
	var args []any
	for k, v := range l.fields.Add(fields) {
		args = append(args, k, v)
	}
	return args
}

func (l watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	logger.Error(msg, err, l.args(fields)...)
}

func (l watermillLogger) Info(msg string, fields watermill.LogFields) {
	logger.Info(msg, l.args(fields)...)
}

func (l watermillLogger) Debug(msg string, fields watermill.LogFields) {
	logger.Debug(msg, l.args(fields)...)
}

func (l watermillLogger) Trace(msg string, fields watermill.LogFields) {
	logger.Debug(msg, l.args(fields)...)
}

func (l watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return watermillLogger{fields: l.fields.Add(fields)}
}
