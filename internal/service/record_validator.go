package service

import (
	"encoding/json"
	"fmt"

	"github.com/Ygohr/queue-proxy-consumer/internal/consumer/models"
)

// RequiredFieldsValidator accepts JSON objects that carry every configured
// top-level field. Field values are not inspected.
type RequiredFieldsValidator struct {
	Fields []string
}

func (v *RequiredFieldsValidator) Validate(msg models.Message) error {
	if len(msg.Value) == 0 {
		return fmt.Errorf("message value is empty")
	}

	var rawPayload map[string]any
	if err := json.Unmarshal(msg.Value, &rawPayload); err != nil {
		return fmt.Errorf("message is not valid JSON: %w", err)
	}

	for _, field := range v.Fields {
		if _, exists := rawPayload[field]; !exists {
			return fmt.Errorf("required field '%s' is missing", field)
		}
	}

	return nil
}
