package model

import "time"

// Role names as stored in the users.role column. A farmer owns and lists
// equipment; a renter books it. Every account has exactly one role.
const (
	RoleFarmer = "farmer"
	RoleRenter = "renter"
)

// User represents an application user record as stored in the `users`
// table. The struct is used by the repository layer; handlers define
// separate response types with JSON tags so that the password hash is
// never serialized by accident.
//
// Fields:
//  ID           - primary key identifier of the user.
//  Name         - display name shown on listings and bookings.
//  Email        - unique email address, stored lowercase.
//  PasswordHash - bcrypt hashed password.
//  Phone        - contact phone number shown to booking counterparties.
//  Role         - either RoleFarmer or RoleRenter.
//  IsActive     - whether the account is active.
//  CreatedAt    - timestamp of creation.
//  UpdatedAt    - timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Phone        string    // users.phone
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user and carries expiry and revocation
// metadata. The plain token is never stored; only its SHA-256 hash.
//
// Fields:
//  ID        - primary key identifier.
//  UserID    - owner of the token.
//  TokenHash - SHA-256 hex digest of the token value.
//  ExpiresAt - expiration timestamp of the token.
//  RevokedAt - when the token was revoked (null if still active).
//  CreatedAt - timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
