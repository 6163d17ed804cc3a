package service

import (
	"context"

	"github.com/Ygohr/queue-proxy-consumer/internal/consumer/models"
)

type Processor interface {
	Process(ctx context.Context, msg models.Message) error
}
