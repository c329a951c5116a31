package domain

import "time"

// User is a dashboard account identified by email.
type User struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Email     string    `json:"email"      gorm:"type:varchar(320);not null;uniqueIndex:ux_users_email"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Session binds an opaque cookie token to a user until ExpiresAt.
type Session struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	Token     string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_sessions_token"`
	UserID    string    `gorm:"type:char(36);not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// MagicLinkToken is a single-use login token delivered by email.
type MagicLinkToken struct {
	ID        string     `gorm:"type:char(36);primaryKey"`
	Email     string     `gorm:"type:varchar(320);not null;index"`
	Token     string     `gorm:"type:varchar(128);not null;uniqueIndex:ux_magic_link_token"`
	ExpiresAt time.Time  `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

// TableName returns the database table name for MagicLinkToken.
func (MagicLinkToken) TableName() string { return "magic_link_tokens" }
