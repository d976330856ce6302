package notification

import (
	"errors"

	"gorm.io/gorm"

	"our-diary/internal/memo"
	"our-diary/internal/user"
)

var ErrNotFound = errors.New("memo not found")

// Reminder is one row of the sweep query: a memo joined with its owner's
// contact details.
type Reminder struct {
	MemoID   uint
	Title    string
	DateKey  string
	Email    string
	Nickname string
}

type Repository interface {
	// DueDaily returns memos with send_email set whose date is today and
	// not yet D-Day-notified, or today+7 and not yet D-7-notified.
	DueDaily(today, sevenDay string) ([]Reminder, error)
	// DueCountdown returns memos dated strictly between today and
	// today+7 that have not had a countdown mail today.
	DueCountdown(today, sevenDay string) ([]Reminder, error)
	MarkNotifiedToday(memoID uint) error
	MarkNotified7Day(memoID uint) error
	MarkCountdownSent(memoID uint, date string) error

	MemoWithOwner(memoID uint) (*memo.Memo, *user.User, error)

	CreateJob(j *DelayedJob) error
	DeleteJob(id string) error
	DeleteJobsForMemo(memoID uint) error
	PendingJobs() ([]DelayedJob, error)
}

type gormRepo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepo{db: db}
}

const reminderSelect = "memos.id AS memo_id, memos.title, memos.date_key, users.email, users.nickname"

func (r *gormRepo) DueDaily(today, sevenDay string) ([]Reminder, error) {
	var rows []Reminder
	err := r.db.Table("memos").
		Select(reminderSelect).
		Joins("JOIN users ON users.id = memos.user_id").
		Where("memos.send_email AND ((memos.date_key = ? AND NOT memos.notified_today) OR (memos.date_key = ? AND NOT memos.notified_7day))",
			today, sevenDay).
		Scan(&rows).Error
	return rows, err
}

func (r *gormRepo) DueCountdown(today, sevenDay string) ([]Reminder, error) {
	var rows []Reminder
	err := r.db.Table("memos").
		Select(reminderSelect).
		Joins("JOIN users ON users.id = memos.user_id").
		Where("memos.send_email AND memos.date_key > ? AND memos.date_key < ? AND memos.last_countdown_date <> ?",
			today, sevenDay, today).
		Scan(&rows).Error
	return rows, err
}

func (r *gormRepo) MarkNotifiedToday(memoID uint) error {
	return r.db.Model(&memo.Memo{}).Where("id = ?", memoID).Update("notified_today", true).Error
}

func (r *gormRepo) MarkNotified7Day(memoID uint) error {
	return r.db.Model(&memo.Memo{}).Where("id = ?", memoID).Update("notified_7day", true).Error
}

func (r *gormRepo) MarkCountdownSent(memoID uint, date string) error {
	return r.db.Model(&memo.Memo{}).Where("id = ?", memoID).Update("last_countdown_date", date).Error
}

func (r *gormRepo) MemoWithOwner(memoID uint) (*memo.Memo, *user.User, error) {
	var m memo.Memo
	if err := r.db.First(&m, memoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	var owner user.User
	if err := r.db.First(&owner, m.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return &m, &owner, nil
}

func (r *gormRepo) CreateJob(j *DelayedJob) error {
	return r.db.Create(j).Error
}

func (r *gormRepo) DeleteJob(id string) error {
	return r.db.Delete(&DelayedJob{}, "id = ?", id).Error
}

func (r *gormRepo) DeleteJobsForMemo(memoID uint) error {
	return r.db.Delete(&DelayedJob{}, "memo_id = ?", memoID).Error
}

func (r *gormRepo) PendingJobs() ([]DelayedJob, error) {
	var jobs []DelayedJob
	err := r.db.Find(&jobs).Error
	return jobs, err
}
