package model

import (
	"time"

	"gorm.io/gorm"
)

// Order records a purchase placed by a user. The admin dashboard only
// aggregates per-user order counts; there is no order API yet.
type Order struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	UserID    uint           `json:"userId" gorm:"index;not null"`
	Total     float64        `json:"total" gorm:"not null"`
	Status    string         `json:"status" gorm:"type:varchar(30);default:'pending'"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
