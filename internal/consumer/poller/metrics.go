package poller

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	messagesConsumed metric.Int64Counter
	processingFailed metric.Int64Counter
	commits          metric.Int64Counter
	proxyErrors      metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	meter := otel.Meter("queue-proxy-consumer")
	m := &metrics{}

	var err error

	m.messagesConsumed, err = meter.Int64Counter(
		"queue_consumer.messages.consumed",
		metric.WithDescription("Records returned by the queue proxy"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create messagesConsumed counter: %w", err)
	}

	m.processingFailed, err = meter.Int64Counter(
		"queue_consumer.processing.failed",
		metric.WithDescription("Records rejected by validation or failed by the handler"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create processingFailed counter: %w", err)
	}

	m.commits, err = meter.Int64Counter(
		"queue_consumer.commits",
		metric.WithDescription("Offset commits sent to the queue proxy"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create commits counter: %w", err)
	}

	m.proxyErrors, err = meter.Int64Counter(
		"queue_consumer.proxy.errors",
		metric.WithDescription("Failed lifecycle calls against the queue proxy"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxyErrors counter: %w", err)
	}

	return m, nil
}

func (m *metrics) consumed(ctx context.Context, topic string, n int) {
	m.messagesConsumed.Add(ctx, int64(n), metric.WithAttributes(attribute.String("topic", topic)))
}

func (m *metrics) failed(ctx context.Context, topic, reason string) {
	m.processingFailed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("reason", reason),
	))
}

func (m *metrics) committed(ctx context.Context) {
	m.commits.Add(ctx, 1)
}

func (m *metrics) proxyError(ctx context.Context, action string) {
	m.proxyErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}
