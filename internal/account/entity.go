// AngelaMos | 2026
// entity.go

package account

import (
	"time"
)

// Account is the stored identity document. Email is kept exactly as the user
// typed it; EmailLC carries the lowercased form under a unique index so
// lookups are case-insensitive while display is not.
type Account struct {
	ID              string     `bson:"_id"`
	Email           string     `bson:"email"`
	EmailLC         string     `bson:"email_lc"`
	PasswordHash    string     `bson:"password_hash"`
	FirstName       string     `bson:"first_name"`
	LastName        string     `bson:"last_name"`
	Phone           string     `bson:"phone"`
	Address         string     `bson:"address,omitempty"`
	Role            string     `bson:"role"`
	Verified        bool       `bson:"verified"`
	VerifyToken     *string    `bson:"verify_token,omitempty"`
	VerifyExpiresAt *time.Time `bson:"verify_expires_at,omitempty"`
	CreatedAt       time.Time  `bson:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a *Account) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

func (a *Account) HasPendingVerification() bool {
	return !a.Verified && a.VerifyToken != nil
}
