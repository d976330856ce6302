package user

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrNicknameTaken      = errors.New("nickname is already taken")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Signup validates uniqueness of username, nickname and email, hashes the
// password and inserts the user. The caller is responsible for verification
// code checks.
func (s *Service) Signup(username, nickname, email, password string) (*User, error) {
	if err := s.checkUnique(username, nickname, email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Username: username,
		Nickname: nickname,
		Email:    email,
		Password: string(hash),
		Provider: ProviderLocal,
	}
	if err := s.repo.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate matches loginID against username or email and compares the
// password. Unknown user and wrong password both map to
// ErrInvalidCredentials so responses cannot be used for account enumeration.
func (s *Service) Authenticate(loginID, password string) (*User, error) {
	u, err := s.repo.FindByLogin(loginID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// FindOrCreateGoogle resolves a Google-authenticated profile to a local user,
// auto-provisioning one on first login. Provisioned accounts get the email as
// username, a random password hash, and the display name as nickname,
// suffixed with a random number when already taken.
func (s *Service) FindOrCreateGoogle(email, name string) (*User, error) {
	u, err := s.repo.FindByEmail(email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	randomPassword := make([]byte, 16)
	if _, err := rand.Read(randomPassword); err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(randomPassword)), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	nickname := name
	if _, err := s.repo.FindByNickname(nickname); err == nil {
		n, err := rand.Int(rand.Reader, big.NewInt(1000))
		if err != nil {
			return nil, fmt.Errorf("generate nickname suffix: %w", err)
		}
		nickname = fmt.Sprintf("%s (%d)", name, n.Int64())
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	created := &User{
		Username: email,
		Nickname: nickname,
		Email:    email,
		Password: string(hash),
		Provider: ProviderGoogle,
	}
	if err := s.repo.Create(created); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) FindByID(id uint) (*User, error) {
	return s.repo.FindByID(id)
}

func (s *Service) UpdateNickname(id uint, nickname string) error {
	existing, err := s.repo.FindByNickname(nickname)
	if err == nil && existing.ID != id {
		return ErrNicknameTaken
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.repo.UpdateNickname(id, nickname)
}

func (s *Service) UpdatePassword(id uint, currentPassword, newPassword string) error {
	u, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(id, string(hash))
}

// Delete hard-deletes the user row. Memos and delayed jobs reference the user
// with ON DELETE CASCADE constraints and go with it.
func (s *Service) Delete(id uint) error {
	return s.repo.Delete(id)
}

func (s *Service) checkUnique(username, nickname, email string) error {
	if _, err := s.repo.FindByUsername(username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, err := s.repo.FindByNickname(nickname); err == nil {
		return ErrNicknameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, err := s.repo.FindByEmail(email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
