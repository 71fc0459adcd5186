package models

import (
	"context"
	"time"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/bunx"
	"github.com/uptrace/bun"
)

// Administrator roles. Any profile passes the route guard; the role only
// decides which mutations are permitted.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// ValidRole reports whether role is one of the known administrator roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// User is a principal that can sign in to the console.
// A user without an AdministratorProfile is authenticated but not authorized.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string     `bun:"id,pk,type:uuid"`
	Email        string     `bun:"email,notnull,unique"`
	PasswordHash string     `bun:"password_hash,notnull"` // bcrypt
	CreatedAt    time.Time  `bun:"created_at,notnull,nullzero,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull,nullzero,default:current_timestamp"`
	LastLoginAt  *time.Time `bun:"last_login_at"`
	DisabledAt   *time.Time `bun:"disabled_at"`
}

var _ bun.BeforeAppendModelHook = (*User)(nil)

// BeforeAppendModel assigns a UUIDv7 on insert.
func (u *User) BeforeAppendModel(_ context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && u.ID == "" {
		u.ID = bunx.NewUUIDv7()
	}
	return nil
}

// AdministratorProfile is the authorization record for a user.
// Provisioned out of band; request handlers only read it.
type AdministratorProfile struct {
	bun.BaseModel `bun:"table:administrator_profiles,alias:ap"`

	ID        string    `bun:"id,pk,type:uuid"` // == users.id
	FullName  string    `bun:"full_name,notnull"`
	Role      string    `bun:"role,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,nullzero,default:current_timestamp"`
}

// Session tracks a signed-in browser. Only the SHA256 of the cookie token is stored.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:sess"`

	ID         string    `bun:"id,pk,type:uuid"`
	UserID     string    `bun:"user_id,notnull,type:uuid"`
	TokenHash  string    `bun:"token_hash,notnull,unique"`
	ExpiresAt  time.Time `bun:"expires_at,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull,nullzero,default:current_timestamp"`
	LastUsedAt time.Time `bun:"last_used_at,notnull,nullzero,default:current_timestamp"`
	UserAgent  *string   `bun:"user_agent"`
	IPAddress  *string   `bun:"ip_address"`
	Revoked    bool      `bun:"revoked,notnull,default:false"`
}

var _ bun.BeforeAppendModelHook = (*Session)(nil)

// BeforeAppendModel assigns a UUIDv7 on insert.
func (s *Session) BeforeAppendModel(_ context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && s.ID == "" {
		s.ID = bunx.NewUUIDv7()
	}
	return nil
}
