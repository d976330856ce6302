package user

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups when no matching user exists.
var ErrNotFound = errors.New("user not found")

type Repository interface {
	Create(u *User) error
	FindByID(id uint) (*User, error)
	FindByEmail(email string) (*User, error)
	// FindByLogin matches the identifier against username or email.
	FindByLogin(loginID string) (*User, error)
	FindByUsername(username string) (*User, error)
	FindByNickname(nickname string) (*User, error)
	UpdateNickname(id uint, nickname string) error
	UpdatePassword(id uint, hash string) error
	Delete(id uint) error
}

type gormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) Repository {
	return &gormRepo{db: db}
}

func (r *gormRepo) Create(u *User) error {
	return r.db.Create(u).Error
}

func (r *gormRepo) FindByID(id uint) (*User, error) {
	var u User
	return mapped(&u, r.db.First(&u, id).Error)
}

func (r *gormRepo) FindByEmail(email string) (*User, error) {
	var u User
	return mapped(&u, r.db.Where("email = ?", email).First(&u).Error)
}

func (r *gormRepo) FindByLogin(loginID string) (*User, error) {
	var u User
	return mapped(&u, r.db.Where("username = ? OR email = ?", loginID, loginID).First(&u).Error)
}

func (r *gormRepo) FindByUsername(username string) (*User, error) {
	var u User
	return mapped(&u, r.db.Where("username = ?", username).First(&u).Error)
}

func (r *gormRepo) FindByNickname(nickname string) (*User, error) {
	var u User
	return mapped(&u, r.db.Where("nickname = ?", nickname).First(&u).Error)
}

func (r *gormRepo) UpdateNickname(id uint, nickname string) error {
	return r.db.Model(&User{}).Where("id = ?", id).Update("nickname", nickname).Error
}

func (r *gormRepo) UpdatePassword(id uint, hash string) error {
	return r.db.Model(&User{}).Where("id = ?", id).Update("password", hash).Error
}

func (r *gormRepo) Delete(id uint) error {
	return r.db.Delete(&User{}, id).Error
}

func mapped(u *User, err error) (*User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}
