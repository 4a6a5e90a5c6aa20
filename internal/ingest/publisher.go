package ingest

import (
	"fmt"

	"github.com/IBM/sarama"
	"github.com/bytedance/sonic"
)

// Publisher sends snapshot events keyed by session, so one session's events
// stay on one partition in order.
type Publisher struct {
	topic string
	prod  sarama.SyncProducer
}

func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.MaxMessageBytes = 16 << 20

	prod, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("ingest: create sync producer: %w", err)
	}
	return NewPublisherWith(prod, topic), nil
}

func NewPublisherWith(prod sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{topic: topic, prod: prod}
}

func (p *Publisher) Publish(ev Event) (partition int32, offset int64, err error) {
	if err := ev.Validate(); err != nil {
		return 0, 0, err
	}
	b, err := sonic.Marshal(ev)
	if err != nil {
		return 0, 0, fmt.Errorf("ingest: marshal event: %w", err)
	}
	partition, offset, err = p.prod.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.Session),
		Value: sarama.ByteEncoder(b),
	})
	if err != nil {
		return 0, 0, fmt.Errorf("ingest: send %s seq=%d: %w", ev.Session, ev.Seq, err)
	}
	return partition, offset, nil
}

func (p *Publisher) Close() error {
	if err := p.prod.Close(); err != nil {
		return fmt.Errorf("ingest: close producer: %w", err)
	}
	return nil
}
