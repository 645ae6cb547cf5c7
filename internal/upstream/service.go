package upstream

import (
	"context"
	"encoding/json"
	"fmt"

	"ob-engine/internal/dtos"
)

// Source delivers normalised book events to a QueueAdder until its context
// is cancelled or the feed ends.
type Source interface {
	Run(ctx context.Context) error
	Close() error
}

type QueueAdder interface {
	AddToQueue(ctx context.Context, event *dtos.BookEvent) error
}

// ErrorRecorder counts events a source had to drop.
type ErrorRecorder interface {
	RecordParseError(component string)
}

func decodeEvent(raw []byte) (*dtos.BookEvent, error) {
	var event dtos.BookEvent

	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return &event, nil
}
