package models

import (
	"time"

	"gorm.io/gorm"
)

// Employee is an internal staff record managed from the dashboard.
type Employee struct {
	gorm.Model
	FullName   string     `json:"fullName" gorm:"not null"`
	Email      string     `json:"email" gorm:"unique;not null"`
	Phone      string     `json:"phone"`
	JobTitle   string     `json:"jobTitle"`
	Department string     `json:"department"`
	Salary     float64    `json:"salary" gorm:"type:numeric(12,2)"`
	HireDate   *time.Time `json:"hireDate"`
	IsActive   *bool      `json:"isActive" gorm:"default:true"`
}

func (Employee) TableName() string { return "employees" }
