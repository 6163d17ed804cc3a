package consumer

import "fmt"

// ProcessingError reports a record that could not be handled, either because
// validation rejected it or because the handler kept failing.
type ProcessingError struct {
	Topic     string `json:"topic"`
	Partition int32  `json:"partition"`
	Offset    int64  `json:"offset"`
	Attempts  int    `json:"attempts"`
	Err       error  `json:"-"`
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("failed to process record %s/%d@%d after %d attempts: %v",
		e.Topic, e.Partition, e.Offset, e.Attempts, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
