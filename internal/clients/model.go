package clients

import "time"

type Client struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Designation string    `bson:"designation" json:"designation"`
	Image       string    `bson:"image" json:"image"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

type CreateRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=500"`
	Designation string `json:"designation" validate:"required,max=100"`
}

// UpdateRequest carries only the fields supplied by the caller; nil means keep.
type UpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Designation *string `json:"designation" validate:"omitempty,max=100"`
}
