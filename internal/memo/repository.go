package memo

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("memo not found")

type Repository interface {
	ListByUser(userID uint) ([]Memo, error)
	FindByUserAndDate(userID uint, dateKey string) (*Memo, error)
	// Upsert inserts the memo or, on the (user, date) conflict, overwrites
	// the content fields and resets the notification markers.
	Upsert(m *Memo) error
	Delete(userID uint, dateKey string) error
}

type gormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) Repository {
	return &gormRepo{db: db}
}

func (r *gormRepo) ListByUser(userID uint) ([]Memo, error) {
	var memos []Memo
	err := r.db.Where("user_id = ?", userID).Order("date_key").Find(&memos).Error
	return memos, err
}

func (r *gormRepo) FindByUserAndDate(userID uint, dateKey string) (*Memo, error) {
	var m Memo
	err := r.db.Where("user_id = ? AND date_key = ?", userID, dateKey).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *gormRepo) Upsert(m *Memo) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date_key"}},
		DoUpdates: clause.Assignments(upsertAssignments(m)),
	}).Create(m).Error
}

// upsertAssignments is the conflict-update column set: the new content, plus
// a full reset of the notification state so an edited memo gets a fresh
// notification cycle.
func upsertAssignments(m *Memo) map[string]interface{} {
	return map[string]interface{}{
		"title":               m.Title,
		"location":            m.Location,
		"story":               m.Story,
		"keywords":            m.Keywords,
		"send_email":          m.SendEmail,
		"notified_today":      false,
		"notified_7day":       false,
		"last_countdown_date": "",
	}
}

func (r *gormRepo) Delete(userID uint, dateKey string) error {
	return r.db.Where("user_id = ? AND date_key = ?", userID, dateKey).Delete(&Memo{}).Error
}
