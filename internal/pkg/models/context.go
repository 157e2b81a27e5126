package models

import (
	"time"
)

// ChatType mirrors the chat types reported by the bot API
type ChatType string

const (
	ChatTypePrivate    ChatType = "private"
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
	ChatTypeChannel    ChatType = "channel"
)

// ContextType classifies a financial context
type ContextType string

const (
	ContextTypePersonal ContextType = "personal"
	ContextTypeFamily   ContextType = "family"
	ContextTypeGroup    ContextType = "group"
	ContextTypeBusiness ContextType = "business"
)

// TransactionPolicy controls who may record transactions in a group context
type TransactionPolicy string

const (
	PolicyEveryone TransactionPolicy = "everyone"
	PolicyAdmins   TransactionPolicy = "admins"
)

// MemberRole is a user's role within a context
type MemberRole string

const (
	RoleMember MemberRole = "member"
	RoleAdmin  MemberRole = "admin"
	RoleOwner  MemberRole = "owner"
)

// Context is a persistent named scope that transactions belong to
type Context struct {
	ID        string            `json:"id" db:"id"`
	Name      string            `json:"name" db:"name"`
	Type      ContextType       `json:"type" db:"type"`
	Currency  string            `json:"currency" db:"currency"`
	Policy    TransactionPolicy `json:"policy" db:"policy"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// ChatContextMapping links a chat to its financial context.
// At most one mapping exists per (chat_id, chat_type) pair.
type ChatContextMapping struct {
	ChatID    int64     `json:"chat_id" db:"chat_id"`
	ChatType  ChatType  `json:"chat_type" db:"chat_type"`
	ContextID string    `json:"context_id" db:"context_id"`
	ChatTitle string    `json:"chat_title" db:"chat_title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Membership ties a user to a context with a role
type Membership struct {
	ContextID string     `json:"context_id" db:"context_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Role      MemberRole `json:"role" db:"role"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// User is a registered account linked to a chat platform identity
type User struct {
	ID         string    `json:"id" db:"id"`
	TelegramID int64     `json:"telegram_id" db:"telegram_id"`
	Username   string    `json:"username" db:"username"`
	FirstName  string    `json:"first_name" db:"first_name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
