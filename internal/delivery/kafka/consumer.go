package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/importer"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/service"
)

type Config struct {
	Brokers     []string
	GroupID     string
	Topic       string
	DLQ         string
	MaxRetries  int
	BaseBackoff time.Duration
}

// Trigger is an import request message. Entity is a public entity name
// or "all" for the full pipeline.
type Trigger struct {
	Entity string `json:"entity"`
}

const TriggerAll = "all"

// Consumer runs imports requested over the trigger topic and publishes
// their outcome to the report publisher. Undeliverable triggers go to
// the DLQ after retries.
type Consumer struct {
	cfg     Config
	reader  *kafka.Reader
	dlq     *kafka.Writer
	svc     service.Import
	reports *Publisher
	log     *logrus.Logger
}

func NewConsumer(cfg Config, svc service.Import, reports *Publisher, log *logrus.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        100 * time.Millisecond,
		CommitInterval: 0,
	})
	var dlq *kafka.Writer
	if cfg.DLQ != "" {
		dlq = &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.DLQ,
			RequiredAcks:           kafka.RequireAll,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		}
	}

	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 200 * time.Millisecond
	}

	return &Consumer{cfg: cfg, reader: r, dlq: dlq, svc: svc, reports: reports, log: log}
}

// handleTrigger decodes one trigger message and runs the requested
// import, publishing the outcome when a report publisher is wired.
func (c *Consumer) handleTrigger(ctx context.Context, payload []byte) error {
	var trig Trigger
	if err := json.Unmarshal(payload, &trig); err != nil {
		return errors.Join(errDecode, err)
	}

	if trig.Entity == TriggerAll {
		report := c.svc.ImportAll()
		return c.publishReport(ctx, report)
	}

	res, err := c.svc.ImportEntity(trig.Entity)
	if err != nil {
		if errors.Is(err, importer.ErrUnknownEntity) {
			return errors.Join(errDecode, err)
		}
		return err
	}
	return c.publishReport(ctx, map[string]interface{}{
		"entity": trig.Entity,
		"result": res,
	})
}

func (c *Consumer) publishReport(ctx context.Context, report interface{}) error {
	if c.reports == nil {
		return nil
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.reports.Publish(ctx, payload)
}

func (c *Consumer) Subscribe(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			c.log.WithError(err).Error("kafka fetch error")
			select {
			case <-time.After(300 * time.Millisecond):
				continue
			case <-ctx.Done():
				return nil
			}
		}

		c.log.WithFields(logrus.Fields{
			"topic":     m.Topic,
			"partition": m.Partition,
			"offset":    m.Offset,
		}).Info("fetched trigger")

		ok := false
		var last error
		for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
			if e := c.handleTrigger(ctx, m.Value); e == nil {
				ok = true
				break
			} else if isNonRetryable(e) {
				last = e
				break
			} else {
				last = e
				time.Sleep(backoff(attempt, c.cfg.BaseBackoff))
			}
		}

		if ok {
			if err := c.reader.CommitMessages(ctx, m); err != nil {
				c.log.WithError(err).Errorf("commit failed (offset %d, partition %d)", m.Offset, m.Partition)
			}
			continue
		}

		if c.dlq != nil {
			if ctx.Err() != nil {
				return nil
			}
			dlqMsg := kafka.Message{
				Key:   m.Key,
				Value: m.Value,
				Headers: append(m.Headers,
					kafka.Header{Key: "x-dlq-reason", Value: []byte(trimErr(last))},
					kafka.Header{Key: "x-dlq-attempts", Value: []byte(strconv.Itoa(c.cfg.MaxRetries + 1))},
					kafka.Header{Key: "x-dlq-ts", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
					kafka.Header{Key: "x-dlq-source-topic", Value: []byte(c.reader.Config().Topic)},
					kafka.Header{Key: "x-dlq-group", Value: []byte(c.reader.Config().GroupID)},
				),
			}
			if err := c.dlq.WriteMessages(ctx, dlqMsg); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.log.WithError(err).Errorf("write to DLQ failed (offset %d, partition %d)", m.Offset, m.Partition)
				time.Sleep(500 * time.Millisecond)
				continue
			}
		} else {
			c.log.WithError(last).Errorf("DLQ disabled, drop message (offset %d, partition %d)", m.Offset, m.Partition)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.WithError(err).Errorf("commit after DLQ (offset %d, partition %d) failed", m.Offset, m.Partition)
		}
	}
}

func (c *Consumer) Close() error {
	var first error
	if c.reader != nil {
		if err := c.reader.Close(); err != nil {
			first = err
		}
	}
	if c.dlq != nil {
		if err := c.dlq.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var errDecode = errors.New("decode")

func backoff(n int, base time.Duration) time.Duration {
	if n <= 0 {
		return 0
	}
	d := base * (1 << (n - 1))
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func trimErr(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	if len(s) > 1000 {
		return s[:1000]
	}
	return s
}

func isNonRetryable(err error) bool {
	return errors.Is(err, errDecode)
}
