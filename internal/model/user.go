package model

import "time"

// User is a read-only projection of the identity service's user record.
// Only the fields needed for ticket payloads are mapped.
//
// Fields:
//  ID        – primary key identifier, matches the JWT subject claim.
//  FullName  – display name embedded in ticket payloads.
//  Email     – contact address.
//  CreatedAt – creation timestamp.
type User struct {
	ID        uint64    `json:"id"`         // users.id
	FullName  string    `json:"full_name"`  // users.full_name
	Email     string    `json:"email"`      // users.email
	CreatedAt time.Time `json:"created_at"` // users.created_at
}
