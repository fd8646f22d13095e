package models

import (
	"github.com/google/uuid"
)

type Customer struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"not null;index" json:"name"`
	Email    string    `gorm:"not null" json:"email"`
	ImageURL string    `gorm:"column:image_url" json:"image_url"`
}

func (Customer) TableName() string { return "customers" }

// CustomerField is the slim shape used by invoice forms.
type CustomerField struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
