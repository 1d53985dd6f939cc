package models

import "time"

// User is a signed-in identity mirrored from the identity provider.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Subject   string    `json:"-" gorm:"uniqueIndex;type:varchar(255);not null"` // provider subject
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Name      string    `json:"name" gorm:"type:varchar(255)"`
	Picture   string    `json:"picture,omitempty" gorm:"type:varchar(1024)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
