package upstream

import (
	"errors"
	"fmt"

	"ob-engine/internal/dtos"

	"github.com/redis/go-redis/v9"
)

var errMissingData = errors.New("message missing 'data' field")

func decodeMessage(msg redis.XMessage) (*dtos.BookEvent, error) {
	field, ok := msg.Values["data"]
	if !ok {
		return nil, errMissingData
	}

	var raw []byte

	switch v := field.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return nil, fmt.Errorf("data field has type %T", field)
	}

	return decodeEvent(raw)
}
