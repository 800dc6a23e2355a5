package model

import "time"

// Flyer is an uploaded image plus its metadata. ImagePath is the public
// relative path of the backing file, e.g. /uploads/<uuid>.png.
type Flyer struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	ImagePath string    `json:"imagePath" gorm:"size:512;not null"`
	CompanyID uint      `json:"companyId" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;index;<-:create"`

	Company *Company `json:"-" gorm:"foreignKey:CompanyID"`
}
