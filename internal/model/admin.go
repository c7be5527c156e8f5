package model

import "time"

// Admin represents an administrator account as stored in the `admins`
// table. Admins are the only authenticated principals of the service;
// every entity created through the API records the creating admin's ID.
// Passwords are stored exclusively as bcrypt hashes.
//
// Fields:
//  ID           – primary key identifier of the admin.
//  Email        – unique email address used for login.
//  Name         – display name.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Admin struct {
	ID           uint64    `json:"id"`         // admins.id
	Email        string    `json:"email"`      // admins.email
	Name         string    `json:"name"`       // admins.name
	PasswordHash string    `json:"-"`          // admins.password_hash
	CreatedAt    time.Time `json:"created_at"` // admins.created_at
	UpdatedAt    time.Time `json:"updated_at"` // admins.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to an admin and contains metadata for expiry
// and revocation. The plain token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     `json:"id"`         // refresh_tokens.id
	AdminID   uint64     `json:"admin_id"`   // refresh_tokens.admin_id
	TokenHash string     `json:"-"`          // refresh_tokens.token_hash
	ExpiresAt time.Time  `json:"expires_at"` // refresh_tokens.expires_at
	RevokedAt *time.Time `json:"revoked_at"` // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  `json:"created_at"` // refresh_tokens.created_at
}
