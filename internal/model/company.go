package model

// Company is a tenant that owns flyers and company-role users.
type Company struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:255;not null"`

	// Relations
	Users  []User  `json:"-" gorm:"foreignKey:CompanyID;constraint:OnDelete:RESTRICT"`
	Flyers []Flyer `json:"-" gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
}
