package model

import "time"

// User represents a row in the `users` table. The login string is the
// identity used everywhere else in the system: JWT subjects, watch
// edges and session flags all reference it.
//
// Fields:
//  ID           – users.id, surrogate key.
//  Login        – users.login, unique.
//  PasswordHash – users.password_hash, bcrypt digest.
//  CreatedAt    – users.created_at.
type User struct {
	ID           uint64    // users.id
	Login        string    // users.login
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
}
