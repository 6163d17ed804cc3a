package models

// Message is a single record handed to handlers, decoded from the proxy's
// JSON representation.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string][]byte
}
