package models

// Role groups permissions assignable to users.
type Role struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"unique;not null"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions" gorm:"many2many:role_permissions;"`
}

// Permission is a single named capability checked by the route middleware.
// Keeping the whole authorization policy in these two tables is what replaces
// the per-screen allow-lists the dashboard used to carry.
type Permission struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"unique;not null"`
	Description string `json:"description"`
	Category    string `json:"category" gorm:"not null"`
}
