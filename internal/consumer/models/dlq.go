package models

import (
	"encoding/json"
	"time"
)

type DLQMessage struct {
	Key        string          `json:"key,omitempty"`
	Value      json.RawMessage `json:"value,omitempty"`
	RawValue   []byte          `json:"raw_value,omitempty"`
	Error      string          `json:"error"`
	FailedAt   time.Time       `json:"failed_at"`
	RetryCount int             `json:"retry_count"`
	Group      string          `json:"group,omitempty"`
	Topic      string          `json:"topic"`
	Partition  int32           `json:"partition"`
	Offset     int64           `json:"offset"`
}

// NewDLQMessage keeps JSON values inline and falls back to raw bytes for
// anything else.
func NewDLQMessage(originalMsg Message, group string, err error, retryCount int) DLQMessage {
	dlq := DLQMessage{
		Key:        string(originalMsg.Key),
		Error:      err.Error(),
		FailedAt:   time.Now().UTC(),
		RetryCount: retryCount,
		Group:      group,
		Topic:      originalMsg.Topic,
		Partition:  originalMsg.Partition,
		Offset:     originalMsg.Offset,
	}

	if json.Valid(originalMsg.Value) {
		dlq.Value = json.RawMessage(originalMsg.Value)
	} else {
		dlq.RawValue = originalMsg.Value
	}

	return dlq
}

func (d DLQMessage) ToJSON() ([]byte, error) {
	return json.Marshal(d)
}
