package cli

import (
	"errors"
	"fmt"
)

var errCancelled = errors.New("pick: cancelled")

type unknownTopicError struct {
	topic string
}

func (e unknownTopicError) Error() string {
	return fmt.Sprintf("unknown docs topic: %q (run `contactpicker docs` to list topics)", e.topic)
}
