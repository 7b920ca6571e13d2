package model

import "time"

// User is provisioned by the external auth integration; this service only
// reads it. AuthID is the auth provider's subject identifier and is what the
// OAuth state parameter carries across the consent round-trip.
type User struct {
	ID        int       `json:"id"`
	AuthID    string    `json:"auth_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
