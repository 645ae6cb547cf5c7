package upstream

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
)

const maxLineSize = 4 << 20

// ReplaySource reads one JSON book event per line.
type ReplaySource struct {
	r      io.Reader
	q      QueueAdder
	errs   ErrorRecorder
	closer io.Closer
}

func NewReplaySource(r io.Reader, q QueueAdder, errs ErrorRecorder) *ReplaySource {
	s := &ReplaySource{
		r:    r,
		q:    q,
		errs: errs,
	}

	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}

	return s
}

// Run returns nil at the end of the input. Malformed lines are logged and
// skipped.
func (s *ReplaySource) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	replayed := 0

	for scanner.Scan() {
		line++

		if err := ctx.Err(); err != nil {
			return nil
		}

		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		event, err := decodeEvent(raw)
		if err != nil {
			slog.Error("Error on replay line", "line", line, "Error", err)
			s.errs.RecordParseError("replay")

			continue
		}

		if err := s.q.AddToQueue(ctx, event); err != nil {
			return nil
		}

		replayed++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read replay input: %w", err)
	}

	slog.Info("Replay finished", "lines", line, "events", replayed)

	return nil
}

func (s *ReplaySource) Close() error {
	if s.closer == nil {
		return nil
	}

	return s.closer.Close()
}
