package model

import "time"

// Roles stored in the users table and embedded in access tokens.
// Organizers may additionally create events, list reservations for
// their events, check attendees in and view statistics.
const (
    RoleUser      = "USER"
    RoleOrganizer = "ORGANIZER"
)

// User represents an application user record as stored in the `users`
// table.  Handlers define separate response types with appropriate
// JSON shaping; this struct is used by the repository layer.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address, stored lowercase.
//  PasswordHash – bcrypt hashed password.
//  Role         – RoleUser or RoleOrganizer.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64
    Name         string
    Email        string
    PasswordHash string
    Role         string
    CreatedAt    time.Time
    UpdatedAt    time.Time
}
