package contacts

import (
	"time"

	"realestate-backend/internal/store"
)

type Contact struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	FullName  string    `bson:"fullName" json:"fullName"`
	Email     string    `bson:"email" json:"email"`
	Mobile    string    `bson:"mobile" json:"mobile"`
	City      string    `bson:"city" json:"city"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type CreateRequest struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Mobile   string `json:"mobile" validate:"required,mobile"`
	City     string `json:"city" validate:"required,max=50"`
}

type Stats struct {
	TotalContacts     int64              `json:"totalContacts"`
	ContactsThisMonth int64              `json:"contactsThisMonth"`
	ContactsByCity    []store.GroupCount `json:"contactsByCity"`
}
