// FilePath: internal/models/models.subject.go
package models

import "time"

// Subject is the owner of an event stream: a baby, or the mother herself for
// contraction tracking. Access tags gate reads and edits per role; fields
// without a writexs tag are never settable through an update.
type Subject struct {
	ID           string     `json:"id" db:"id" readxs:"*"`
	Name         string     `json:"name" db:"name" readxs:"*" writexs:"parent,admin"`
	BirthDate    *time.Time `json:"birth_date,omitempty" db:"birth_date" readxs:"*" writexs:"parent,admin"`
	DueDate      *time.Time `json:"due_date,omitempty" db:"due_date" readxs:"*" writexs:"parent,admin"`
	Notes        string     `json:"notes,omitempty" db:"notes" readxs:"parent,caregiver,admin" writexs:"parent,admin"`
	MedicalNotes string     `json:"medical_notes,omitempty" db:"medical_notes" readxs:"parent,admin" writexs:"parent,admin"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at" readxs:"*"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at" readxs:"*"`
}
