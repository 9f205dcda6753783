package projects

import "time"

// Project is the minimal management view of a project.
type Project struct {
	ID        string
	Name      string
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
