package notification

import (
	"time"

	"our-diary/internal/user"
)

const JobKindReminder = "reminder"

// DelayedJob is a persisted deferred notification. Rows survive process
// restarts and are cancellable by memo id, unlike a bare timer.
type DelayedJob struct {
	ID        string    `gorm:"primaryKey;size:36"`
	MemoID    uint      `gorm:"index;not null"`
	UserID    uint      `gorm:"not null"`
	Kind      string    `gorm:"size:20;not null"`
	DueAt     time.Time `gorm:"not null"`
	CreatedAt time.Time

	User user.User `gorm:"constraint:OnDelete:CASCADE"`
}
