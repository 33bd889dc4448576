package model

import "time"

// Role values stored in users.role and carried in the JWT "role" claim.
// Admin-only and user-only endpoints are disjoint: an admin token is
// rejected from user routes and vice versa.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column.  The admin identity is NOT a
// row in this table; it is a synthetic identity backed by configured
// credentials (see handler.AuthHandler).
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login name.
//	Email        – unique email address, stored lowercased.
//	PasswordHash – bcrypt hashed password; the plaintext is never stored.
//	Role         – either "user" or "admin" (always "user" for rows created
//	               through registration).
//	Phone        – optional contact number.
//	IsActive     – whether the account may log in.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
//	LastLogin    – last successful login (null until first login).
type User struct {
	ID           uint64     // users.id
	Username     string     // users.username
	Email        string     // users.email
	PasswordHash string     // users.password_hash
	Role         string     // users.role
	Phone        *string    // users.phone (nullable)
	IsActive     bool       // users.is_active
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
	LastLogin    *time.Time // users.last_login (nullable)
}
