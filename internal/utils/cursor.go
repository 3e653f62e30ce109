package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var errBadCursor = errors.New("invalid cursor format")

// EncodeCursor makes the opaque keyset position handed to clients: the
// base64 of "<created_at>,<id>".
func EncodeCursor(createdAt time.Time, id uuid.UUID) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "," + id.String()
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

func DecodeCursor(encoded string) (time.Time, uuid.UUID, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: %v", errBadCursor, err)
	}
	rawTime, rawID, ok := strings.Cut(string(raw), ",")
	if !ok {
		return time.Time{}, uuid.Nil, errBadCursor
	}
	createdAt, err := time.Parse(time.RFC3339Nano, rawTime)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: %v", errBadCursor, err)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: %v", errBadCursor, err)
	}
	return createdAt, id, nil
}
