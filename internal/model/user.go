package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account stored in the database. The password column holds
// a bcrypt hash and is never serialized.
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password  string         `json:"-" gorm:"type:varchar(255);not null"`
	FirstName string         `json:"firstName" gorm:"type:varchar(100)"`
	LastName  string         `json:"lastName" gorm:"type:varchar(100)"`
	Phone     string         `json:"phone" gorm:"type:varchar(30)"`
	IsAdmin   bool           `json:"isAdmin" gorm:"default:false"`
	Orders    []Order        `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
