package users

import "time"

// User represents a user account for management.
type User struct {
	ID          string
	Email       string
	Username    string
	DisplayName string
	GlobalRole  string
	IsAdmin     bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
