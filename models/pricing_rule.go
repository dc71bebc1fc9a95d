package models

import "gorm.io/gorm"

// PricingRule adjusts an inventory quote for a given link type.
// Formula is a govaluate expression over the variables "price" and "fee",
// e.g. "fee * 1.5" for do-follow placements. It is compiled at save time so a
// broken formula can never reach the quote path.
type PricingRule struct {
	gorm.Model
	LinkType    string `json:"linkType" gorm:"column:link_type;uniqueIndex;not null"`
	Formula     string `json:"formula" gorm:"not null"`
	Description string `json:"description"`
}

func (PricingRule) TableName() string { return "pricing_rules" }
