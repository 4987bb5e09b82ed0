package services

import (
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/common"
)

// NotYetUnlockedError reports a read attempted before the unlock time. It
// matches common.ErrorNotYetUnlocked under errors.Is.
type NotYetUnlockedError struct {
	UnlockAt time.Time
}

func (e *NotYetUnlockedError) Error() string {
	return common.ErrorNotYetUnlocked.Error()
}

func (e *NotYetUnlockedError) Unwrap() error {
	return common.ErrorNotYetUnlocked
}
