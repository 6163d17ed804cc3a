package poller

import (
	"context"
	"net/url"

	"github.com/Ygohr/queue-proxy-consumer/internal/consumer/models"
	"github.com/Ygohr/queue-proxy-consumer/internal/proxy"
)

// Lifecycle is the subset of proxy.Client the poll loop drives.
type Lifecycle interface {
	CreateConsumerInstance(ctx context.Context) (*url.URL, error)
	ConsumeMessages(ctx context.Context, instance *url.URL) ([]proxy.MessageRecord, error)
	CommitOffsets(ctx context.Context, instance *url.URL) error
	DestroyConsumerInstance(ctx context.Context, instance *url.URL) error
}

type DeadLetterPublisher interface {
	SendToDLQ(ctx context.Context, originalMsg models.Message, err error, retryCount int) error
}
