package models

import (
	"strings"
	"time"
)

// Gender labels accepted for a product.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderUnisex = "unisex"
)

// Genders lists the closed label set in display order.
var Genders = []string{GenderMale, GenderFemale, GenderUnisex}

// Product represents a product in the store.
type Product struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null"`
	Gender    string    `json:"gender" gorm:"type:varchar(16);not null;index"`
	Price     float64   `json:"price" gorm:"not null"`
	OldPrice  *float64  `json:"oldPrice"` // nil when the product is not discounted
	Image     string    `json:"image" gorm:"type:varchar(1024);not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductDraft is an unpersisted product awaiting validation and submission.
// Numeric fields are already parsed.
type ProductDraft struct {
	Name     string   `json:"name" validate:"required,max=200"`
	Gender   string   `json:"gender" validate:"required,oneof=male female unisex"`
	Price    float64  `json:"price" validate:"gte=0"`
	OldPrice *float64 `json:"oldPrice" validate:"omitempty,gte=0"`
	Image    string   `json:"image" validate:"required,max=1024"`
}

// Normalize trims text fields and lower-cases the gender label.
func (d ProductDraft) Normalize() ProductDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Gender = strings.ToLower(strings.TrimSpace(d.Gender))
	d.Image = strings.TrimSpace(d.Image)
	return d
}

// ToProduct builds the record handed to the store. ID and timestamps are left
// for the store to assign.
func (d ProductDraft) ToProduct() *Product {
	return &Product{
		Name:     d.Name,
		Gender:   d.Gender,
		Price:    d.Price,
		OldPrice: d.OldPrice,
		Image:    d.Image,
	}
}
