package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// UserStore is the credential store the auth flow and guard read from.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindVerifiedByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint64) (*User, error)
	Save(ctx context.Context, u *User) error
}

type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) Create(ctx context.Context, u *User) error {
	err := s.DB.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent signup won the race on the verified-email index
		return ErrEmailInUse
	}
	return err
}

func (s *GormStore) FindVerifiedByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.DB.WithContext(ctx).
		Where("email = ? AND verified = true", email).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) FindByID(ctx context.Context, id uint64) (*User, error) {
	var u User
	err := s.DB.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) Save(ctx context.Context, u *User) error {
	return s.DB.WithContext(ctx).Save(u).Error
}
