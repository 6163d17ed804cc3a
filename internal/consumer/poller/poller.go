package poller

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/Ygohr/queue-proxy-consumer/internal/config"
	"github.com/Ygohr/queue-proxy-consumer/internal/consumer"
	"github.com/Ygohr/queue-proxy-consumer/internal/consumer/models"
	"github.com/Ygohr/queue-proxy-consumer/internal/logger"
	"github.com/Ygohr/queue-proxy-consumer/internal/proxy"
	"github.com/sony/gobreaker"
)

const minIdleBackoff = 10 * time.Millisecond

var ErrStopped = errors.New("consumer has been stopped and cannot be restarted")

// Consumer implements consumer.Consumer on top of a queue proxy consumer
// instance. One goroutine owns the instance: it creates it, polls it,
// commits offsets and drops it after a failure so the next cycle creates a
// fresh one. Stop destroys the instance, which also releases the proxy
// transport.
type Consumer struct {
	lifecycle  Lifecycle
	config     *config.Config
	handlers   map[string]consumer.MessageHandler
	validators map[string]consumer.MessageValidator
	breaker    *gobreaker.CircuitBreaker
	dlq        DeadLetterPublisher
	metrics    *metrics
	log        logger.Logger
	mu         sync.RWMutex
	running    bool
	stopped    bool
	cancel     context.CancelFunc
	done       chan struct{}
	instance   *url.URL
}

func NewConsumer(cfg *config.Config, lifecycle Lifecycle, dlq DeadLetterPublisher, log logger.Logger) (*Consumer, error) {
	if lifecycle == nil {
		return nil, fmt.Errorf("lifecycle client must not be nil")
	}

	m, err := newMetrics()
	if err != nil {
		return nil, err
	}

	threshold := cfg.QueueBreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "queue-proxy",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnf("Circuit breaker %s changed state from %s to %s", name, from, to)
		},
	})

	return &Consumer{
		lifecycle:  lifecycle,
		config:     cfg,
		handlers:   make(map[string]consumer.MessageHandler),
		validators: make(map[string]consumer.MessageValidator),
		breaker:    breaker,
		dlq:        dlq,
		metrics:    m,
		log:        log,
	}, nil
}

func (c *Consumer) Subscribe(topic string, handler consumer.MessageHandler) error {
	if handler == nil {
		return fmt.Errorf("handler for topic %s must not be nil", topic)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlers[topic] = handler
	c.log.Infof("Subscribed to topic: %s", topic)
	return nil
}

func (c *Consumer) AddValidator(topic string, validator consumer.MessageValidator) error {
	if validator == nil {
		return fmt.Errorf("validator for topic %s must not be nil", topic)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.validators[topic] = validator
	c.log.Infof("Validator added for topic: %s", topic)
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return ErrStopped
	}
	if c.running {
		return fmt.Errorf("consumer already running")
	}
	if len(c.handlers) == 0 {
		return fmt.Errorf("no handlers subscribed")
	}

	var runCtx context.Context
	runCtx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	c.running = true

	go c.run(runCtx)

	c.log.Infof("Queue proxy consumer started - group: %s, topic: %s", c.config.QueueGroup, c.config.QueueTopic)
	return nil
}

// Stop ends the poll loop and destroys the consumer instance, if one is
// open. The consumer cannot be started again afterwards.
func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	c.stopped = true
	c.cancel()
	done := c.done
	c.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for poll loop: %w", ctx.Err())
	}

	if c.instance == nil {
		c.log.Infof("Queue proxy consumer stopped, no consumer instance to destroy")
		return nil
	}

	if err := c.lifecycle.DestroyConsumerInstance(ctx, c.instance); err != nil {
		return fmt.Errorf("failed to destroy consumer instance: %w", err)
	}
	c.instance = nil

	c.log.Infof("Queue proxy consumer stopped successfully")
	return nil
}

func (c *Consumer) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

func (c *Consumer) run(ctx context.Context) {
	defer close(c.done)

	backoff := c.config.BackoffPeriod()
	if backoff < minIdleBackoff {
		backoff = minIdleBackoff
	}

	for {
		if ctx.Err() != nil {
			return
		}

		count, err := c.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Errorf("Poll cycle failed: %v", err)
		}

		if err != nil || count == 0 {
			if !sleep(ctx, backoff) {
				return
			}
		}
	}
}

// poll runs one create-if-needed, consume, dispatch, commit cycle and
// returns the number of records consumed.
func (c *Consumer) poll(ctx context.Context) (int, error) {
	if c.instance == nil {
		instance, err := c.call(ctx, proxy.ActionCreate, func() (interface{}, error) {
			return c.lifecycle.CreateConsumerInstance(ctx)
		})
		if err != nil {
			return 0, err
		}
		c.instance = instance.(*url.URL)
	}

	result, err := c.call(ctx, proxy.ActionConsume, func() (interface{}, error) {
		return c.lifecycle.ConsumeMessages(ctx, c.instance)
	})
	if err != nil {
		c.dropInstance(ctx, err)
		return 0, err
	}

	records := result.([]proxy.MessageRecord)
	if len(records) == 0 {
		return 0, nil
	}

	c.metrics.consumed(ctx, c.config.QueueTopic, len(records))

	for _, record := range records {
		c.dispatch(ctx, toMessage(record, c.config.QueueTopic))
	}

	// Shutdown mid-batch leaves the instance for Stop to destroy.
	if ctx.Err() != nil {
		return len(records), ctx.Err()
	}

	if !c.config.QueueAutoCommit {
		_, err := c.call(ctx, proxy.ActionCommit, func() (interface{}, error) {
			return nil, c.lifecycle.CommitOffsets(ctx, c.instance)
		})
		if err != nil {
			c.dropInstance(ctx, err)
			return len(records), err
		}
		c.metrics.committed(ctx)
	}

	return len(records), nil
}

func (c *Consumer) call(ctx context.Context, action string, fn func() (interface{}, error)) (interface{}, error) {
	result, err := c.breaker.Execute(fn)
	if err != nil {
		c.metrics.proxyError(ctx, action)
		return nil, err
	}
	return result, nil
}

// dropInstance forgets the current instance after a failed call. It is not
// destroyed: destroying releases the shared transport, and the proxy expires
// abandoned instances on its own. Calls cut short by shutdown keep the
// instance so Stop can destroy it.
func (c *Consumer) dropInstance(ctx context.Context, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return
	}
	c.log.Warnf("Dropping consumer instance %s after error: %v", c.instance, err)
	c.instance = nil
}

func (c *Consumer) dispatch(ctx context.Context, msg models.Message) {
	c.mu.RLock()
	handler, exists := c.handlers[msg.Topic]
	validator := c.validators[msg.Topic]
	c.mu.RUnlock()

	if !exists {
		c.log.Warnf("No handler found for topic: %s", msg.Topic)
		return
	}

	if validator != nil {
		if err := validator.Validate(msg); err != nil {
			c.log.Errorf("Validation failed for record %s/%d@%d: %v", msg.Topic, msg.Partition, msg.Offset, err)
			c.metrics.failed(ctx, msg.Topic, "validation")
			c.deadLetter(ctx, msg, &consumer.ProcessingError{
				Topic: msg.Topic, Partition: msg.Partition, Offset: msg.Offset, Err: err,
			}, 0)
			return
		}
	}

	attempts, err := c.processMessageWithRetry(ctx, msg, handler)
	if err != nil && ctx.Err() != nil {
		c.log.Warnf("Shutdown interrupted processing of record %s/%d@%d", msg.Topic, msg.Partition, msg.Offset)
		return
	}
	if err != nil {
		c.log.Errorf("Failed to process record after retries from topic %s: %v", msg.Topic, err)
		c.metrics.failed(ctx, msg.Topic, "handler")
		c.deadLetter(ctx, msg, &consumer.ProcessingError{
			Topic: msg.Topic, Partition: msg.Partition, Offset: msg.Offset, Attempts: attempts, Err: err,
		}, attempts)
		return
	}

	c.log.Debugf("Successfully processed record from topic: %s, offset: %d", msg.Topic, msg.Offset)
}

func (c *Consumer) processMessageWithRetry(ctx context.Context, msg models.Message, handler consumer.MessageHandler) (int, error) {
	maxRetries := c.config.QueueRetryAttempts
	if maxRetries <= 0 {
		maxRetries = 1
	}
	backoffDelay := c.config.RetryBackoff()

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = handler(ctx, msg)
		if err == nil {
			return attempt, nil
		}

		c.log.Warnf("Attempt %d/%d failed for record from topic %s: %v", attempt, maxRetries, msg.Topic, err)

		if attempt == maxRetries {
			break
		}

		if !sleep(ctx, backoffDelay) {
			return attempt, ctx.Err()
		}
		backoffDelay *= 2
	}

	return maxRetries, err
}

func (c *Consumer) deadLetter(ctx context.Context, msg models.Message, err error, attempts int) {
	if c.dlq == nil {
		return
	}
	if dlqErr := c.dlq.SendToDLQ(ctx, msg, err, attempts); dlqErr != nil {
		c.log.Errorf("Failed to send record to DLQ: %v", dlqErr)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
