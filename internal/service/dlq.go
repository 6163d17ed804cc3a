package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/Ygohr/queue-proxy-consumer/internal/consumer/models"
	"github.com/Ygohr/queue-proxy-consumer/internal/logger"
)

type DLQService struct {
	producer sarama.SyncProducer
	topic    string
	group    string
	log      logger.Logger
}

// NewDLQConfig builds the producer config. SASL is enabled when credentials
// are set; mechanism is SCRAM-SHA-256 (the default when empty) or SCRAM-SHA-512.
func NewDLQConfig(username, password, mechanism string) (*sarama.Config, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 10 * time.Second

	if username != "" && password != "" {
		hash := SHA256
		switch mechanism {
		case "", sarama.SASLTypeSCRAMSHA256:
			config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		case sarama.SASLTypeSCRAMSHA512:
			config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
			hash = SHA512
		default:
			return nil, fmt.Errorf("unsupported SASL mechanism: %s", mechanism)
		}

		config.Net.SASL.Enable = true
		config.Net.SASL.User = username
		config.Net.SASL.Password = password
		config.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &XDGSCRAMClient{HashGeneratorFcn: hash}
		}
	}

	config.Version = sarama.V2_8_0_0

	return config, nil
}

func NewDLQService(brokers []string, topic, group, username, password, mechanism string, log logger.Logger) (*DLQService, error) {
	config, err := NewDLQConfig(username, password, mechanism)
	if err != nil {
		return nil, err
	}

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create DLQ producer: %w", err)
	}

	return NewDLQServiceWithProducer(producer, topic, group, log), nil
}

func NewDLQServiceWithProducer(producer sarama.SyncProducer, topic, group string, log logger.Logger) *DLQService {
	return &DLQService{
		producer: producer,
		topic:    topic,
		group:    group,
		log:      log,
	}
}

func (d *DLQService) SendToDLQ(ctx context.Context, originalMsg models.Message, cause error, retryCount int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dlqMessage := models.NewDLQMessage(originalMsg, d.group, cause, retryCount)

	jsonData, err := dlqMessage.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: d.topic,
		Key:   sarama.StringEncoder(fmt.Sprintf("%s-%d-%d", originalMsg.Topic, originalMsg.Partition, originalMsg.Offset)),
		Value: sarama.ByteEncoder(jsonData),
		Headers: []sarama.RecordHeader{
			{Key: []byte("original_topic"), Value: []byte(originalMsg.Topic)},
			{Key: []byte("error_type"), Value: []byte("processing_error")},
			{Key: []byte("retry_count"), Value: []byte(strconv.Itoa(retryCount))},
		},
	}

	partition, offset, err := d.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message to DLQ: %w", err)
	}

	d.log.Infof("Record sent to DLQ topic: %s, partition: %d, offset: %d, original topic: %s, error: %v",
		d.topic, partition, offset, originalMsg.Topic, cause)

	return nil
}

func (d *DLQService) Close() error {
	return d.producer.Close()
}
