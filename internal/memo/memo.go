package memo

import (
	"time"

	"our-diary/internal/user"
)

// Memo is one diary entry. DateKey is a calendar date formatted as
// YYYY-MM-DD and unique per user.
type Memo struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;uniqueIndex:idx_memos_user_date" json:"-"`
	DateKey  string `gorm:"size:10;not null;uniqueIndex:idx_memos_user_date" json:"-"`
	Title    string `gorm:"size:200" json:"title"`
	Location string `gorm:"size:200" json:"location"`
	Story    string `gorm:"type:text" json:"story"`
	Keywords string `gorm:"size:500" json:"keywords"`

	SendEmail bool `gorm:"not null;default:false" json:"sendEmail"`

	// Notification markers. Set by the scheduler, cleared by a fresh
	// upsert, never reset otherwise.
	NotifiedToday     bool   `gorm:"not null;default:false" json:"notified_today"`
	Notified7Day      bool   `gorm:"not null;default:false" json:"notified_7day"`
	LastCountdownDate string `gorm:"size:10;not null;default:''" json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	User user.User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Input is the memoryData payload clients send on upsert.
type Input struct {
	Title     string `json:"title"`
	Location  string `json:"location"`
	Story     string `json:"story"`
	Keywords  string `json:"keywords"`
	SendEmail bool   `json:"sendEmail"`
}

// Map keys the caller's memos by date for the client.
func Map(memos []Memo) map[string]Memo {
	m := make(map[string]Memo, len(memos))
	for _, entry := range memos {
		m[entry.DateKey] = entry
	}
	return m
}
