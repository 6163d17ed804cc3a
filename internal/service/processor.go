package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Ygohr/queue-proxy-consumer/internal/consumer/models"
	"github.com/Ygohr/queue-proxy-consumer/internal/logger"
)

type RecordProcessor struct {
	targetServiceUrl string
	log              logger.Logger
	httpClient       *http.Client
}

func NewRecordProcessor(targetServiceUrl string, log logger.Logger) Processor {
	return &RecordProcessor{
		targetServiceUrl: targetServiceUrl,
		log:              log,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *RecordProcessor) Process(ctx context.Context, msg models.Message) error {
	p.log.Infof("Processing record - topic: %s, partition: %d, offset: %d", msg.Topic, msg.Partition, msg.Offset)

	if len(msg.Value) == 0 {
		p.log.Errorf("Record has no payload - offset: %d", msg.Offset)
		return fmt.Errorf("record has no payload")
	}

	if err := p.callTargetService(ctx, msg); err != nil {
		p.log.Errorf("Failed to forward record to target service: %v", err)
		return fmt.Errorf("failed to forward record: %w", err)
	}

	return nil
}

func (p *RecordProcessor) callTargetService(ctx context.Context, msg models.Message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.targetServiceUrl, bytes.NewReader(msg.Value))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Origin-Topic", msg.Topic)
	req.Header.Set("X-Origin-Offset", strconv.FormatInt(msg.Offset, 10))
	if len(msg.Key) > 0 {
		req.Header.Set("X-Origin-Key", string(msg.Key))
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("target service returned error status: %d", resp.StatusCode)
	}

	p.log.Infof("Successfully forwarded record to target service - status: %d", resp.StatusCode)

	return nil
}
