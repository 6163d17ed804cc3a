package consumer

import (
	"encoding/json"
	"fmt"

	"github.com/Ygohr/queue-proxy-consumer/internal/consumer/models"
)

type MessageValidator interface {
	Validate(msg models.Message) error
}

type DefaultValidator struct{}

func (v *DefaultValidator) Validate(msg models.Message) error {
	if len(msg.Value) == 0 {
		return fmt.Errorf("message value is empty")
	}

	if !json.Valid(msg.Value) {
		return fmt.Errorf("message is not valid JSON")
	}

	return nil
}
