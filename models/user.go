package models

import "gorm.io/gorm"

// User is a staff account able to sign in to the dashboard.
type User struct {
	gorm.Model
	Login        string `json:"login" gorm:"unique;not null"`
	Email        string `json:"email" gorm:"unique;not null"`
	FullName     string `json:"fullName"`
	PasswordHash string `json:"-" gorm:"not null"`
	Status       string `json:"status" gorm:"default:'active'"`
	PhotoURL     string `json:"photoUrl"`
	Roles        []Role `json:"roles" gorm:"many2many:user_roles;"`
}
