package auth

import "time"

type Subscription string

const (
	SubscriptionStarter  Subscription = "starter"
	SubscriptionPro      Subscription = "pro"
	SubscriptionBusiness Subscription = "business"
)

func (s Subscription) Valid() bool {
	switch s {
	case SubscriptionStarter, SubscriptionPro, SubscriptionBusiness:
		return true
	}
	return false
}

type User struct {
	ID           uint64       `gorm:"primaryKey"`
	Email        string       `gorm:"index;not null"`
	PasswordHash string       `gorm:"not null" json:"-"`
	Subscription Subscription `gorm:"type:text;not null;default:'starter'"`
	Verified     bool         `gorm:"not null;default:false"`

	// Last token issued at login. Cleared on logout and by the session
	// expiry job. Not consulted by the auth guard.
	SessionToken *string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}
