package proxy

import "encoding/json"

// MessageRecord is one record returned by the proxy. Key and Value are kept
// exactly as the proxy encoded them.
type MessageRecord struct {
	Topic     string          `json:"topic,omitempty"`
	Key       json.RawMessage `json:"key,omitempty"`
	Value     json.RawMessage `json:"value"`
	Partition int32           `json:"partition"`
	Offset    int64           `json:"offset"`
}

type createConsumerRequest struct {
	OffsetReset string `json:"auto.offset.reset"`
	AutoCommit  string `json:"auto.commit.enable"`
}

type createConsumerResponse struct {
	InstanceID string `json:"instance_id,omitempty"`
	BaseURI    string `json:"base_uri"`
}
