package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Ygohr/queue-proxy-consumer/internal/config"
	"github.com/Ygohr/queue-proxy-consumer/internal/logger"
)

const contentTypeJSON = "application/json"

// Client drives the consumer instance lifecycle against a Kafka REST proxy:
// create, then any number of consume and commit calls, then destroy. Each
// call is a single request with no retries.
type Client struct {
	cfg       *config.Config
	proxyHost *url.URL
	transport Transport
	status    *StatusTracker
	log       logger.Logger
}

func NewClient(cfg *config.Config, transport Transport, status *StatusTracker, log logger.Logger) (*Client, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport must not be nil")
	}

	proxyHost, err := parseProxyHost(cfg.QueueProxyHost)
	if err != nil {
		return nil, err
	}

	if status == nil {
		status = NewStatusTracker()
	}

	return &Client{
		cfg:       cfg,
		proxyHost: proxyHost,
		transport: transport,
		status:    status,
		log:       log,
	}, nil
}

func (c *Client) CreateConsumerInstance(ctx context.Context) (*url.URL, error) {
	target := c.proxyHost.JoinPath("consumers", c.cfg.QueueGroup)

	body, err := json.Marshal(createConsumerRequest{
		OffsetReset: c.cfg.QueueOffset,
		AutoCommit:  strconv.FormatBool(c.cfg.QueueAutoCommit),
	})
	if err != nil {
		return nil, c.transportError(ActionCreate, err)
	}

	headers := c.routingHeaders(map[string]string{"Content-Type": contentTypeJSON})

	resp, err := c.issue(ctx, ActionCreate, http.MethodPost, target, headers, body, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var created createConsumerResponse
	if err := json.Unmarshal(resp.Body, &created); err != nil {
		return nil, c.transportError(ActionCreate, fmt.Errorf("failed to decode response: %w", err))
	}

	instance, err := url.Parse(created.BaseURI)
	if err != nil || created.BaseURI == "" {
		return nil, c.transportError(ActionCreate, fmt.Errorf("invalid base_uri %q", created.BaseURI))
	}

	c.log.Infof("Consumer instance created - group: %s, instance: %s", c.cfg.QueueGroup, instance)
	return instance, nil
}

func (c *Client) ConsumeMessages(ctx context.Context, instance *url.URL) ([]MessageRecord, error) {
	target := c.routedURI(instance, "topics", c.cfg.QueueTopic)
	headers := c.routingHeaders(map[string]string{"Accept": contentTypeJSON})

	resp, err := c.issue(ctx, ActionConsume, http.MethodGet, target, headers, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var records []MessageRecord
	if err := json.Unmarshal(resp.Body, &records); err != nil {
		return nil, c.transportError(ActionConsume, fmt.Errorf("failed to decode records: %w", err))
	}

	c.status.Healthy(len(records))
	c.log.Debugf("Consumed %d records - topic: %s", len(records), c.cfg.QueueTopic)
	return records, nil
}

func (c *Client) CommitOffsets(ctx context.Context, instance *url.URL) error {
	target := c.routedURI(instance, "offsets")

	_, err := c.issue(ctx, ActionCommit, http.MethodPost, target, c.routingHeaders(nil), nil, http.StatusOK)
	return err
}

// DestroyConsumerInstance deletes the remote instance and, on success,
// releases the transport. The client cannot be used afterwards.
func (c *Client) DestroyConsumerInstance(ctx context.Context, instance *url.URL) error {
	target := c.routedURI(instance)

	resp, err := c.issue(ctx, ActionDestroy, http.MethodDelete, target, c.routingHeaders(nil), nil, http.StatusNoContent)
	if err != nil {
		return err
	}

	c.log.Infof("Consumer instance destroyed - status: %d, instance: %s", resp.StatusCode, instance)
	c.status.Unhealthy(StatusDestroyed)
	c.transport.Release()
	return nil
}

func (c *Client) Status() string {
	return c.status.Get()
}

func (c *Client) issue(ctx context.Context, action, method string, target *url.URL, headers map[string]string, body []byte, expected int) (*Response, error) {
	resp, err := c.transport.Issue(ctx, method, target.String(), headers, body)
	if err != nil {
		return nil, c.transportError(action, err)
	}

	if resp.StatusCode != expected {
		return nil, c.statusError(action, resp.StatusCode)
	}

	return resp, nil
}

func (c *Client) statusError(action string, code int) error {
	err := &StatusError{Action: action, Code: code}
	c.status.Unhealthy(err.Error())
	c.log.Errorf("%s", err.Error())
	return err
}

func (c *Client) transportError(action string, cause error) error {
	err := &TransportError{Action: action, Err: cause}
	c.status.Unhealthy(err.Error())
	c.log.Errorf("%s: %v", err.Error(), cause)
	return err
}
