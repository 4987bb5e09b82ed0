// Package services contains server-side business logic. This file implements
// CapsuleService, the capsule lifecycle engine.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/clock"
	"github.com/dmitrijs2005/timecapsule/internal/common"
	"github.com/dmitrijs2005/timecapsule/internal/dbx"
	"github.com/dmitrijs2005/timecapsule/internal/logging"
	"github.com/dmitrijs2005/timecapsule/internal/server/models"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/capsules"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timecapsule/internal/server/storage"
	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	attachmentURLTTL = 15 * time.Minute
)

// UpdateInput carries the fields an update may change. Nil means unchanged.
type UpdateInput struct {
	Message  *string
	UnlockAt *time.Time
}

// CapsuleService enforces the capsule access rules: ownership scoping, the
// unlock code, the lock window and retirement.
type CapsuleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	clock       clock.Clock
	store       storage.ObjectStore
	logger      logging.Logger
}

// NewCapsuleService wires the service. store may be nil, which disables
// attachments.
func NewCapsuleService(db *sql.DB, m repomanager.RepositoryManager, clk clock.Clock,
	store storage.ObjectStore, logger logging.Logger) *CapsuleService {
	return &CapsuleService{
		db:          db,
		repomanager: m,
		clock:       clk,
		store:       store,
		logger:      logger.With("module", "capsules"),
	}
}

// Create stores a new locked capsule. The returned capsule is the only place
// the unlock code is ever exposed.
func (s *CapsuleService) Create(ctx context.Context, ownerID, message string, unlockAt time.Time) (*models.Capsule, error) {
	now := s.clock.Now()

	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message and unlock time are required", common.ErrorValidation)
	}
	if unlockAt.IsZero() || !unlockAt.After(now) {
		return nil, fmt.Errorf("%w: unlock time must be a valid date in the future", common.ErrorValidation)
	}

	code, err := common.MakeUnlockCode(common.UnlockCodeLength)
	if err != nil {
		return nil, fmt.Errorf("error generating unlock code: %w", err)
	}

	c := &models.Capsule{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Message:    message,
		UnlockAt:   unlockAt,
		UnlockCode: code,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repomanager.Capsules(s.db).Create(ctx, c); err != nil {
		return nil, fmt.Errorf("error creating capsule: %w", err)
	}

	s.logger.Info(ctx, "capsule created", "capsule_id", c.ID, "owner_id", ownerID, "unlock_at", unlockAt)
	return c, nil
}

// Read opens a capsule. Checks run in a fixed order: existence, retirement,
// code, lock window.
func (s *CapsuleService) Read(ctx context.Context, ownerID, id, code string) (*models.OpenedCapsule, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}

	c, err := s.repomanager.Capsules(s.db).GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if c.IsRetired(now) {
		return nil, common.ErrorRetired
	}
	if !codeMatches(c.UnlockCode, code) {
		return nil, common.ErrorUnauthorized
	}
	if c.IsLocked(now) {
		return nil, &NotYetUnlockedError{UnlockAt: c.UnlockAt}
	}

	opened := &models.OpenedCapsule{
		ID:        c.ID,
		Message:   c.Message,
		UnlockAt:  c.UnlockAt,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	if c.AttachmentKey != nil && s.store != nil {
		url, err := s.store.PresignGet(ctx, *c.AttachmentKey, attachmentURLTTL)
		if err != nil {
			return nil, fmt.Errorf("error presigning attachment: %w", err)
		}
		opened.AttachmentURL = url
	}

	return opened, nil
}

// List returns one page of the owner's capsules, newest first, with the
// message redacted for capsules that are locked or retired.
func (s *CapsuleService) List(ctx context.Context, ownerID string, page, limit int) (*models.CapsulePage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}

	repo := s.repomanager.Capsules(s.db)

	total, err := repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var items []*models.Capsule
	if offset := (page - 1) * limit; offset < total {
		items, err = repo.ListByOwner(ctx, ownerID, limit, offset)
		if err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	summaries := make([]models.CapsuleSummary, 0, len(items))
	for _, c := range items {
		summaries = append(summaries, c.Summarize(now))
	}

	return &models.CapsulePage{
		Capsules:   summaries,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Update changes the message and/or unlock time of a locked capsule.
func (s *CapsuleService) Update(ctx context.Context, ownerID, id, code string, in UpdateInput) (string, error) {
	if in.Message == nil && in.UnlockAt == nil {
		return "", fmt.Errorf("%w: at least one field to update is required", common.ErrorValidation)
	}

	err := s.withLockedCapsule(ctx, ownerID, id, code, func(ctx context.Context, repo capsules.Repository, c *models.Capsule, now time.Time) error {
		if in.Message != nil {
			if strings.TrimSpace(*in.Message) == "" {
				return fmt.Errorf("%w: message must not be empty", common.ErrorValidation)
			}
			c.Message = *in.Message
		}
		if in.UnlockAt != nil {
			if !in.UnlockAt.After(now) {
				return fmt.Errorf("%w: unlock time must be a valid date in the future", common.ErrorValidation)
			}
			c.UnlockAt = *in.UnlockAt
		}
		c.UpdatedAt = now
		return repo.Update(ctx, c)
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "capsule updated", "capsule_id", id, "owner_id", ownerID)
	return id, nil
}

// Delete removes a locked capsule. Its attachment object, if any, is removed
// after the row is gone; a failure there is only logged.
func (s *CapsuleService) Delete(ctx context.Context, ownerID, id, code string) (string, error) {
	var attachmentKey *string

	err := s.withLockedCapsule(ctx, ownerID, id, code, func(ctx context.Context, repo capsules.Repository, c *models.Capsule, _ time.Time) error {
		attachmentKey = c.AttachmentKey
		return repo.Delete(ctx, ownerID, id)
	})
	if err != nil {
		return "", err
	}

	if attachmentKey != nil && s.store != nil {
		if err := s.store.Delete(ctx, *attachmentKey); err != nil {
			s.logger.Warn(ctx, "attachment delete failed", "capsule_id", id, "key", *attachmentKey, "error", err)
		}
	}

	s.logger.Info(ctx, "capsule deleted", "capsule_id", id, "owner_id", ownerID)
	return id, nil
}

// AttachmentUploadURL assigns a fresh attachment key to a locked capsule and
// returns a presigned URL the client uploads the object to. An object under
// the previous key is removed best-effort after commit.
func (s *CapsuleService) AttachmentUploadURL(ctx context.Context, ownerID, id, code string) (*models.AttachmentUpload, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: attachments are not enabled", common.ErrorValidation)
	}

	var url string
	var previousKey *string
	err := s.withLockedCapsule(ctx, ownerID, id, code, func(ctx context.Context, repo capsules.Repository, c *models.Capsule, now time.Time) error {
		previousKey = c.AttachmentKey
		key := storage.NewAttachmentKey(c.ID, now)

		var err error
		url, err = s.store.PresignPut(ctx, key, attachmentURLTTL)
		if err != nil {
			return fmt.Errorf("error presigning upload: %w", err)
		}

		c.AttachmentKey = &key
		c.UpdatedAt = now
		return repo.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	if previousKey != nil {
		if err := s.store.Delete(ctx, *previousKey); err != nil {
			s.logger.Warn(ctx, "previous attachment delete failed", "capsule_id", id, "key", *previousKey, "error", err)
		}
	}

	return &models.AttachmentUpload{CapsuleID: id, URL: url}, nil
}

// RetireOverdue flags every capsule whose retention window has passed and
// returns how many changed.
func (s *CapsuleService) RetireOverdue(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	return s.repomanager.Capsules(s.db).MarkRetired(ctx, now.Add(-common.RetentionWindow), now)
}

type mutateFunc func(ctx context.Context, repo capsules.Repository, c *models.Capsule, now time.Time) error

// withLockedCapsule runs fn in a transaction holding the capsule's row lock,
// after the mutation preconditions (owner, code, still locked) hold.
func (s *CapsuleService) withLockedCapsule(ctx context.Context, ownerID, id, code string, fn mutateFunc) error {
	if !validID(id) {
		return common.ErrorNotFound
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Capsules(tx)

		c, err := repo.GetByIDForUpdate(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if !codeMatches(c.UnlockCode, code) {
			return common.ErrorUnauthorized
		}

		now := s.clock.Now()
		if !c.IsLocked(now) {
			return common.ErrorAlreadyUnlocked
		}

		return fn(ctx, repo, c, now)
	})
}

func codeMatches(stored, supplied string) bool {
	if supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// validID filters ids that can never match a stored capsule so they surface
// as NotFound instead of a database type error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
