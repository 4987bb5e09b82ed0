// Package storage provides the object store used for capsule attachments.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ObjectStore issues short-lived URLs for attachment objects and removes them.
type ObjectStore interface {
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewAttachmentKey returns a fresh object key for an attachment of the given
// capsule, partitioned by upload date.
func NewAttachmentKey(capsuleID string, now time.Time) string {
	return fmt.Sprintf("capsules/%d/%02d/%02d/%s/%v", now.Year(), now.Month(), now.Day(), capsuleID, uuid.New())
}
