package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyRecord caches a committed operation result so retried requests
// replay the original outcome instead of moving money twice.
type IdempotencyRecord struct {
	Key          string    `json:"key"`
	OperationID  uuid.UUID `json:"operation_id"`
	ResponseJSON []byte    `json:"response_json"`
	CreatedAt    time.Time `json:"created_at"`
}

// BuildIdempotencyKey scopes a caller-supplied key to an operation type and
// the initiating wallet, so the same token on different endpoints cannot collide.
func BuildIdempotencyKey(op, address, key string) string {
	return op + ":" + address + ":" + key
}
