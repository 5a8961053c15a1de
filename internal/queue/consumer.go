package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/moviemaster/catalog/internal/logger"
)

// StartCatalogConsumer connects to RabbitMQ, declares the catalog.events
// queue (durable) and consumes it, appending one line per event to
// logs/catalog.log. It runs a reconnect loop with exponential backoff and
// never brings the server down: processing failures are logged and the
// offending message rejected without requeue.
func StartCatalogConsumer() {
	url := brokerURL()
	log := logger.Get()

	backoff := initialBackoff
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.WithError(err).Warnf("catalog-consumer: dial failed; retrying in %s", backoff)
			sleep(backoff)
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = initialBackoff // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.WithError(err).Warn("catalog-consumer: consume loop ended; reconnecting")
			sleep(reconnectDelay)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Get().WithError(err).Warn("catalog-consumer: set QoS failed")
	}

	if _, err = ch.QueueDeclare(CatalogQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(CatalogQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			logger.Get().WithError(err).Warn("catalog-consumer: handle message failed")
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	var ev MovieEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "catalog.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s | movie_id=%d | title=%q | actor=%s\n",
		ev.OccurredAt, ev.Type, ev.MovieID, ev.Title, ev.Actor)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
