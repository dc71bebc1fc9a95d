package models

import "gorm.io/gorm"

// InventoryItem is a catalogued web property available for placements.
type InventoryItem struct {
	gorm.Model
	Domain          string  `json:"domain" gorm:"uniqueIndex;not null"`
	Category        string  `json:"category"`
	DomainAuthority int     `json:"domainAuthority" gorm:"column:domain_authority"`
	MonthlyTraffic  int     `json:"monthlyTraffic"`
	GuestPostPrice  float64 `json:"guestPostPrice" gorm:"column:guest_post_price;type:numeric(12,2)"`
	ArticleFee      float64 `json:"articleFee" gorm:"column:article_fee;type:numeric(12,2)"`
	ContactEmail    string  `json:"contactEmail"`
	IsActive        *bool   `json:"isActive" gorm:"default:true"`
}

func (InventoryItem) TableName() string { return "web_inventory" }
