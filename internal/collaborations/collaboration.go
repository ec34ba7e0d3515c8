package collaborations

import (
	"errors"
	"time"
)

const PageSize = 6

var ErrNotFound = errors.New("collaboration not found")

type Type string

const (
	TypeResearch          Type = "RESEARCH"
	TypeOpenSourceProject Type = "OPEN_SOURCE_PROJECT"
	TypeStartupCofounder  Type = "STARTUP_COFOUNDER"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Collaboration struct {
	ID           string    `json:"id"`
	Type         Type      `json:"type"`
	Title        string    `json:"title"`
	FullName     string    `json:"fullName"`
	Organization *string   `json:"organization"`
	Description  string    `json:"description"`
	Link         *string   `json:"link"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListFilter narrows a listing, zero values mean "no filter".
type ListFilter struct {
	Page   int
	Query  string
	Types  []Type
	Status Status
}

func (f ListFilter) offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * PageSize
}

// Patch holds the fields a moderator may change, nil means unchanged.
type Patch struct {
	Status       *Status
	Title        *string
	Description  *string
	Organization *string
	Link         *string
}
