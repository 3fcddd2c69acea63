package models

import "time"

// Classroom is a bookable room.
type Classroom struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Building  *string   `db:"building" json:"building,omitempty"`
	Capacity  int       `db:"capacity" json:"capacity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassroomFilter captures list filters for classrooms.
type ClassroomFilter struct {
	Search    string
	Building  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
