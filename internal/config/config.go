package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	QueueProxyHost        string   `mapstructure:"QUEUE_PROXY_HOST"`
	QueueGroup            string   `mapstructure:"QUEUE_GROUP"`
	QueueTopic            string   `mapstructure:"QUEUE_TOPIC"`
	QueueName             string   `mapstructure:"QUEUE_NAME"`
	QueueOffset           string   `mapstructure:"QUEUE_OFFSET"`
	QueueAutoCommit       bool     `mapstructure:"QUEUE_AUTO_COMMIT"`
	QueueAuthorizationKey string   `mapstructure:"QUEUE_AUTHORIZATION_KEY"`
	QueueBackoffPeriod    int      `mapstructure:"QUEUE_BACKOFF_PERIOD"`
	QueueRequestTimeout   int      `mapstructure:"QUEUE_REQUEST_TIMEOUT"`
	QueueRetryAttempts    int      `mapstructure:"QUEUE_RETRY_ATTEMPTS"`
	QueueRetryBackoff     int      `mapstructure:"QUEUE_RETRY_BACKOFF_MS"`
	QueueBreakerThreshold int      `mapstructure:"QUEUE_BREAKER_THRESHOLD"`
	QueueBreakerTimeout   int      `mapstructure:"QUEUE_BREAKER_TIMEOUT"`
	RequiredFields        []string `mapstructure:"REQUIRED_FIELDS"`
	KafkaBootstrapServers string   `mapstructure:"KAFKA_BOOTSTRAP_SERVERS"`
	KafkaUsername         string   `mapstructure:"KAFKA_USERNAME"`
	KafkaPassword         string   `mapstructure:"KAFKA_PASSWORD"`
	KafkaSaslMechanism    string   `mapstructure:"KAFKA_SASL_MECHANISM"`
	KafkaTopicDlq         string   `mapstructure:"KAFKA_TOPIC_DLQ"`
	TargetServiceUrl      string   `mapstructure:"TARGET_SERVICE_URL"`
	HealthAddr            string   `mapstructure:"HEALTH_ADDR"`
	HealthShutdownTimeout int      `mapstructure:"HEALTH_SHUTDOWN_TIMEOUT"`
	LogLevel              string   `mapstructure:"LOG_LEVEL"`
	LogDevelopment        bool     `mapstructure:"LOG_DEVELOPMENT"`
}

func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("QUEUE_PROXY_HOST", "http://localhost:8082")
	v.SetDefault("QUEUE_GROUP", "queue-proxy-consumer")
	v.SetDefault("QUEUE_TOPIC", "messages")
	v.SetDefault("QUEUE_NAME", "")
	v.SetDefault("QUEUE_OFFSET", "largest")
	v.SetDefault("QUEUE_AUTO_COMMIT", false)
	v.SetDefault("QUEUE_AUTHORIZATION_KEY", "")
	v.SetDefault("QUEUE_BACKOFF_PERIOD", 8)
	v.SetDefault("QUEUE_REQUEST_TIMEOUT", 30)
	v.SetDefault("QUEUE_RETRY_ATTEMPTS", 3)
	v.SetDefault("QUEUE_RETRY_BACKOFF_MS", 1000)
	v.SetDefault("QUEUE_BREAKER_THRESHOLD", 5)
	v.SetDefault("QUEUE_BREAKER_TIMEOUT", 30)
	v.SetDefault("REQUIRED_FIELDS", []string{})
	v.SetDefault("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092")
	v.SetDefault("KAFKA_USERNAME", "")
	v.SetDefault("KAFKA_PASSWORD", "")
	v.SetDefault("KAFKA_SASL_MECHANISM", "SCRAM-SHA-256")
	v.SetDefault("KAFKA_TOPIC_DLQ", "")
	v.SetDefault("TARGET_SERVICE_URL", "http://localhost:8081/api/v1/messages")
	v.SetDefault("HEALTH_ADDR", ":8080")
	v.SetDefault("HEALTH_SHUTDOWN_TIMEOUT", 5)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", true)

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading .env file: %w", err)
		}
	}

	v.AutomaticEnv()

	var config *Config
	err := v.Unmarshal(&config)
	if err != nil {
		return nil, errors.New("failed to unmarshal config")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.QueueProxyHost)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("QUEUE_PROXY_HOST must be an absolute URL, got %q", c.QueueProxyHost)
	}
	if c.QueueGroup == "" {
		return errors.New("QUEUE_GROUP must not be empty")
	}
	if c.QueueTopic == "" {
		return errors.New("QUEUE_TOPIC must not be empty")
	}
	if c.QueueRetryAttempts < 1 {
		return fmt.Errorf("QUEUE_RETRY_ATTEMPTS must be at least 1, got %d", c.QueueRetryAttempts)
	}
	if c.QueueBackoffPeriod < 0 {
		return errors.New("QUEUE_BACKOFF_PERIOD must not be negative")
	}
	return nil
}

func (c *Config) BackoffPeriod() time.Duration {
	return time.Duration(c.QueueBackoffPeriod) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.QueueRequestTimeout) * time.Second
}

func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.QueueRetryBackoff) * time.Millisecond
}

func (c *Config) BreakerTimeout() time.Duration {
	return time.Duration(c.QueueBreakerTimeout) * time.Second
}

func (c *Config) HealthShutdown() time.Duration {
	return time.Duration(c.HealthShutdownTimeout) * time.Second
}
