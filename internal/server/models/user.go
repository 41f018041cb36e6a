// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account that owns files and has a storage ceiling.
type User struct {
	ID string
	// UserName is the unique login (letter first, latin letters and digits,
	// 4-20 characters).
	UserName string
	Email    string
	FullName string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
	// IsAdmin grants access to other users' files and the larger ceiling.
	// Assigned at creation, never editable through normal flows.
	IsAdmin bool
	// MaxStorage is the storage ceiling in bytes. Always >= the configured
	// minimum; admins get a separate fixed ceiling at creation time.
	MaxStorage int64
	CreatedAt  time.Time
}
