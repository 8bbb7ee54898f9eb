package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OpportunityStatusOpen   = "open"
	OpportunityStatusClosed = "closed"
)

// Opportunity represents a volunteering opportunity posted by an NGO,
// stored in MongoDB.
type Opportunity struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	NgoID          uint               `json:"ngo_id" bson:"ngo_id"`
	Title          string             `json:"title" bson:"title"`
	Description    string             `json:"description" bson:"description"`
	RequiredSkills []string           `json:"required_skills" bson:"required_skills"`
	Duration       string             `json:"duration" bson:"duration"`
	Location       string             `json:"location" bson:"location"`
	Status         string             `json:"status" bson:"status"` // open or closed
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateOpportunityRequest defines the request body for posting a new opportunity
type CreateOpportunityRequest struct {
	Title          string   `json:"title" validate:"required,min=3,max=120"`
	Description    string   `json:"description" validate:"required"`
	RequiredSkills []string `json:"required_skills,omitempty"`
	Duration       string   `json:"duration" validate:"required"`
	Location       string   `json:"location" validate:"required"`
	Status         string   `json:"status,omitempty" validate:"omitempty,oneof=open closed"`
}

// UpdateOpportunityRequest defines the request body for editing an opportunity
type UpdateOpportunityRequest struct {
	Title          string   `json:"title,omitempty" validate:"omitempty,min=3,max=120"`
	Description    string   `json:"description,omitempty"`
	RequiredSkills []string `json:"required_skills,omitempty"`
	Duration       string   `json:"duration,omitempty"`
	Location       string   `json:"location,omitempty"`
	Status         string   `json:"status,omitempty" validate:"omitempty,oneof=open closed"`
}
