package models

import "gorm.io/gorm"

// Order statuses. Every order starts in StatusCreated.
const (
	OrderStatusCreated    = "created"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Order is a client campaign purchasing guest-post placements.
// Money fields are copied verbatim from the submitted draft; the cost
// breakdown is derived on read and never stored.
type Order struct {
	gorm.Model
	OrderID             string      `json:"orderId" gorm:"column:order_id;uniqueIndex;not null"`
	ClientName          string      `json:"clientName" gorm:"not null"`
	ClientEmail         string      `json:"clientEmail" gorm:"not null"`
	Tag                 string      `json:"tag"`
	TotalBudget         float64     `json:"totalBudget" gorm:"type:numeric(12,2)"`
	ProfitMarginPercent float64     `json:"profitMargin" gorm:"column:profit_margin_percent"`
	Status              string      `json:"status" gorm:"default:'created'"`
	Sites               []OrderSite `json:"sites" gorm:"foreignKey:OrderRowID;references:ID"`
}

func (Order) TableName() string { return "orders" }

// OrderSite is one line item of an order: a web property paired with its
// placement price and article fee. SourceInventoryID is a weak reference used
// only for pre-fill; prices may diverge from the inventory record afterwards.
type OrderSite struct {
	gorm.Model
	OrderRowID        uint    `json:"-" gorm:"column:order_row_id;index;not null"`
	SiteName          string  `json:"siteName" gorm:"not null"`
	Keyword           string  `json:"keyword"`
	ClientLink        string  `json:"clientLink"`
	SitePrice         float64 `json:"sitePrice" gorm:"type:numeric(12,2)"`
	ArticleFee        float64 `json:"articleFee" gorm:"type:numeric(12,2)"`
	SourceInventoryID *uint   `json:"sourceInventoryId" gorm:"column:source_inventory_id"`
}

func (OrderSite) TableName() string { return "order_sites" }
