package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/praktiki/internship-credit-portal/internal/infrastructure/resilience"
)

// Queue carries certificate-uploaded events from the api to the
// extraction worker.
type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

// uploadEvent is the wire envelope. EnqueuedAt lets the subscriber log
// delivery lag without a database round trip. A payload that fails to
// decode is treated as a bare upload id, so plain-text publishes from
// operational tooling still process.
type uploadEvent struct {
	UploadID   string    `json:"upload_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("internship-credit-portal"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishCertificateUploaded(ctx context.Context, uploadID string) error {
	payload, err := json.Marshal(uploadEvent{UploadID: uploadID, EnqueuedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal upload event: %w", err)
	}

	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeCertificateUploaded consumes upload events in the
// "extractors" queue group until the context ends, then drains so
// in-flight messages finish before shutdown.
func (q *Queue) SubscribeCertificateUploaded(ctx context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, "extractors", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		event := decodeUploadEvent(msg.Data)
		if event.UploadID == "" {
			slog.Warn("upload_event_empty", "subject", q.subject)
			return
		}
		if !event.EnqueuedAt.IsZero() {
			slog.Debug("upload_event_received",
				"upload_id", event.UploadID,
				"delivery_lag_ms", float64(time.Since(event.EnqueuedAt).Microseconds())/1000.0,
			)
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, event.UploadID); err != nil {
			slog.Error("extractor_handler_failed", "upload_id", event.UploadID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func decodeUploadEvent(data []byte) uploadEvent {
	var event uploadEvent
	if err := json.Unmarshal(data, &event); err != nil || event.UploadID == "" {
		return uploadEvent{UploadID: string(data)}
	}
	return event
}
