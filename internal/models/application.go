package models

import "time"

const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusRejected = "rejected"
)

// Application links a volunteer to an opportunity (PostgreSQL). The
// opportunity lives in MongoDB, so it is referenced by its hex object id.
// A volunteer can apply to a given opportunity at most once.
type Application struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	OpportunityID string    `json:"opportunity_id" gorm:"size:24;index;uniqueIndex:idx_opportunity_volunteer"`
	VolunteerID   uint      `json:"volunteer_id" gorm:"index;uniqueIndex:idx_opportunity_volunteer"`
	Status        string    `json:"status" gorm:"size:20;default:pending;index"` // pending, accepted, rejected
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UpdateApplicationStatusRequest defines the request body for accepting or
// rejecting an application.
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}
