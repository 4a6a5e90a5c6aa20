// Package kafkaconsumer applies snapshot feed events to the session store.
package kafkaconsumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	obs "github.com/mohammed-shakir/trh-dashboard/internal/core/observability"
	"github.com/mohammed-shakir/trh-dashboard/internal/frame"
	"github.com/mohammed-shakir/trh-dashboard/internal/ingest"
	mylog "github.com/mohammed-shakir/trh-dashboard/internal/logger"
	"github.com/mohammed-shakir/trh-dashboard/internal/session"
)

// SnapshotWriter is the write side of session.Store.
type SnapshotWriter interface {
	Put(ctx context.Context, id string, s session.Snapshot) error
}

type Consumer struct {
	cfg    Config
	logger *slog.Logger
	store  SnapshotWriter
	dedupe *seqDedupe
	zlog   *zerolog.Logger
}

// New builds a consumer; zl may be nil to drop the structured event log.
func New(cfg Config, logger *slog.Logger, zl *zerolog.Logger, store SnapshotWriter) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		cfg:    cfg,
		logger: logger,
		store:  store,
		dedupe: newSeqDedupe(cfg.DedupeSize),
		zlog:   mylog.FromContext(mylog.WithComponent(context.Background(), "snapshot_consumer"), zl),
	}
}

// Start consumes the snapshot topic until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	if c.store == nil {
		return errors.New("kafkaconsumer: missing session store")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{process: c.ProcessOne}

	c.logger.Info("snapshot feed consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("snapshot feed consumer shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
				c.logger.Error("consumer error", "err", err)
				select {
				case <-ctx.Done():
				case <-time.After(2 * time.Second):
				}
			}
		}
	}
}

// ProcessOne applies a single message. Invalid and stale events are
// acknowledged and dropped; only store failures are returned so the message
// is retried.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev ingest.Event
	if err := sonic.Unmarshal(msg.Value, &ev); err != nil {
		obs.IncSnapshotIngest("decode_error")
		c.zlog.Error().
			Str("kind", "decode").
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Err(err).
			Msg("kafka error")
		return nil
	}
	if err := ev.Validate(); err != nil {
		obs.IncSnapshotIngest("invalid")
		c.logger.Warn("dropping snapshot event", "offset", msg.Offset, "err", err)
		return nil
	}
	ctx = mylog.WithSession(ctx, ev.Session)

	if c.dedupe.stale(ev.Session, ev.Seq) {
		obs.IncSnapshotIngest("stale")
		c.logger.Debug("stale snapshot event", "session", ev.Session, "seq", ev.Seq)
		return nil
	}
	if _, err := frame.DecodeSplit(ev.DF); err != nil {
		obs.IncSnapshotIngest("invalid")
		c.logger.Warn("dropping malformed snapshot", "session", ev.Session, "seq", ev.Seq, "err", err)
		return nil
	}
	if _, err := frame.DecodeMeta(ev.Meta); err != nil {
		obs.IncSnapshotIngest("invalid")
		c.logger.Warn("dropping malformed metadata", "session", ev.Session, "seq", ev.Seq, "err", err)
		return nil
	}

	if err := c.store.Put(ctx, ev.Session, ev.Snapshot()); err != nil {
		obs.IncSnapshotIngest("store_error")
		mylog.FromContext(ctx, c.zlog).Error().
			Str("kind", "session_put").
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Err(err).
			Msg("kafka error")
		return fmt.Errorf("store session %q: %w", ev.Session, err)
	}
	c.dedupe.applied(ev.Session, ev.Seq)

	obs.IncSnapshotIngest("applied")
	mylog.FromContext(ctx, c.zlog).Info().
		Str("event", "snapshot").
		Uint64("seq", ev.Seq).
		Int("df_bytes", len(ev.DF)).
		Msg("snapshot applied")
	return nil
}
