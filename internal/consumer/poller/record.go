package poller

import (
	"encoding/json"

	"github.com/Ygohr/queue-proxy-consumer/internal/consumer/models"
	"github.com/Ygohr/queue-proxy-consumer/internal/proxy"
)

// toMessage unwraps JSON string keys and values; any other JSON value is
// passed through as its raw encoding.
func toMessage(record proxy.MessageRecord, defaultTopic string) models.Message {
	topic := record.Topic
	if topic == "" {
		topic = defaultTopic
	}

	return models.Message{
		Topic:     topic,
		Partition: record.Partition,
		Offset:    record.Offset,
		Key:       unwrap(record.Key),
		Value:     unwrap(record.Value),
		Headers:   make(map[string][]byte),
	}
}

func unwrap(raw json.RawMessage) []byte {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var s string
	if raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return []byte(s)
	}

	return []byte(raw)
}
