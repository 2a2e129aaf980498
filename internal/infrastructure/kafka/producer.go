package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/MametaroGG/BoothPic/internal/cfg"
	"github.com/MametaroGG/BoothPic/internal/usecase"
	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/MametaroGG/BoothPic/pkg/logger"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
)

const (
	eventBatchFlushed     = "index.batch_flushed"
	eventRunCompleted     = "index.run_completed"
	eventOptOutRegistered = "optout.registered"
)

// IndexEvent — уведомление о ходе индексации для внешних потребителей
// (инвалидация кэшей, мониторинг). События информационные, их потеря
// не влияет на консистентность индекса.
type IndexEvent struct {
	EventID   string `json:"event_id"`
	Type      string `json:"type"`
	RunID     int64  `json:"run_id"`
	Points    int    `json:"points,omitempty"`
	Processed int    `json:"processed,omitempty"`
	Indexed   int    `json:"indexed,omitempty"`
	Upserts   int    `json:"upserts,omitempty"`
	EarlyExit bool   `json:"early_exit,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// OptOutEvent — уведомление операторам о новой заявке на исключение
// магазина. Замена письму: заявки разбирает дежурный через общий
// канал событий.
type OptOutEvent struct {
	EventID     string   `json:"event_id"`
	Type        string   `json:"type"`
	Identifier  string   `json:"identifier"`
	Identifiers []string `json:"identifiers"`
	Timestamp   int64    `json:"timestamp"`
}

// Producer публикует события индексации и заявки opt-out в Kafka. Без
// заданных брокеров работает в no-op режиме: конвейер не обязан тянуть
// за собой Kafka.
type Producer struct {
	writer *kafka.Writer
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) *Producer {
	if len(cfg.Brokers) == 0 {
		logger.Infof("kafka brokers not configured, index events disabled")
		return &Producer{logger: logger, cfg: cfg}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    10,
		BatchTimeout: 500 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warnf("Kafka producer error: %s", err.Error())
			}
		},
	}

	return &Producer{
		writer: writer,
		logger: logger,
		cfg:    cfg,
	}
}

func (p *Producer) BatchFlushed(ctx context.Context, runID int64, points int) error {
	// Ключ по запуску: события одного запуска попадают в одну партицию
	// и читаются по порядку.
	return p.publish(ctx, strconv.FormatInt(runID, 10), IndexEvent{
		EventID:   uuid.NewString(),
		Type:      eventBatchFlushed,
		RunID:     runID,
		Points:    points,
		Timestamp: time.Now().UnixNano(),
	})
}

func (p *Producer) RunCompleted(ctx context.Context, runID int64, report *usecase.SeedReport) error {
	return p.publish(ctx, strconv.FormatInt(runID, 10), IndexEvent{
		EventID:   uuid.NewString(),
		Type:      eventRunCompleted,
		RunID:     runID,
		Processed: report.Processed,
		Indexed:   report.Indexed,
		Upserts:   report.Upserts,
		EarlyExit: report.EarlyExit,
		Timestamp: time.Now().UnixNano(),
	})
}

func (p *Producer) OptOutRegistered(ctx context.Context, identifier string, identifiers []string) error {
	return p.publish(ctx, identifier, OptOutEvent{
		EventID:     uuid.NewString(),
		Type:        eventOptOutRegistered,
		Identifier:  identifier,
		Identifiers: identifiers,
		Timestamp:   time.Now().UnixNano(),
	})
}

func (p *Producer) publish(ctx context.Context, key string, event any) error {
	if p.writer == nil {
		return nil
	}

	value, err := json.Marshal(event)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

// EnsureTopic создаёт топик, если его ещё нет.
func (p *Producer) EnsureTopic(timeout time.Duration) error {
	if p.writer == nil {
		return nil
	}

	conn, err := kafka.Dial(p.cfg.NetworkMode, p.cfg.Brokers[0])
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(p.cfg.Topic)
	if err == nil && len(partitions) > 0 {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.CreateTopics(kafka.TopicConfig{
			Topic:             p.cfg.Topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to create topic %s: %w", p.cfg.Topic, err))
		}
		return nil
	case <-time.After(timeout):
		_ = conn.Close()
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("timeout: %v, topic: %s", timeout, p.cfg.Topic))
	}
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}

	return p.writer.Close()
}
