package handlers

import (
	"net/http"
	"strings"

	"github.com/DhanaADS/crm-dashboard-sub000/config"
	"github.com/DhanaADS/crm-dashboard-sub000/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type InventoryInput struct {
	Domain          string  `json:"domain" binding:"required"`
	Category        string  `json:"category"`
	DomainAuthority int     `json:"domainAuthority" binding:"gte=0,lte=100"`
	MonthlyTraffic  int     `json:"monthlyTraffic" binding:"gte=0"`
	GuestPostPrice  float64 `json:"guestPostPrice" binding:"gte=0"`
	ArticleFee      float64 `json:"articleFee" binding:"gte=0"`
	ContactEmail    string  `json:"contactEmail"`
	IsActive        *bool   `json:"isActive"`
}

// SiteQuote is the pre-fill returned for a selected inventory record. It is a
// copy: editing the selection afterwards never touches the inventory row, and
// nothing is reserved.
type SiteQuote struct {
	SiteName          string  `json:"siteName"`
	SitePrice         float64 `json:"sitePrice"`
	ArticleFee        float64 `json:"articleFee"`
	SourceInventoryID uint    `json:"sourceInventoryId"`
	LinkType          string  `json:"linkType,omitempty"`
}

// ListInventoryHandler returns the inventory snapshot the order form filters
// against. "search" matches domain and category case-insensitively.
func ListInventoryHandler(c *gin.Context) {
	query := config.DB.Model(&models.InventoryItem{}).Order("domain_authority desc")

	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(domain) LIKE ? OR LOWER(category) LIKE ?", pattern, pattern)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if c.Query("activeOnly") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var items []models.InventoryItem
	if err := query.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch inventory"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// QuoteInventoryHandler copies an inventory record's prices into a site
// selection pre-fill, applying the link-type pricing rule when one exists.
func QuoteInventoryHandler(c *gin.Context) {
	var item models.InventoryItem
	if err := config.DB.First(&item, c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch inventory item"})
		}
		return
	}

	quote := SiteQuote{
		SiteName:          item.Domain,
		SitePrice:         item.GuestPostPrice,
		ArticleFee:        item.ArticleFee,
		SourceInventoryID: item.ID,
	}

	if linkType := c.Query("linkType"); linkType != "" {
		fee, applied, err := applyPricingRule(linkType, item.GuestPostPrice, item.ArticleFee)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Pricing rule evaluation failed"})
			return
		}
		if applied {
			quote.ArticleFee = fee
			quote.LinkType = linkType
		}
	}

	c.JSON(http.StatusOK, quote)
}

// GetInventoryHandler returns a single inventory record.
func GetInventoryHandler(c *gin.Context) {
	var item models.InventoryItem
	if err := config.DB.First(&item, c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch inventory item"})
		}
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateInventoryHandler adds a web property to the catalogue.
func CreateInventoryHandler(c *gin.Context) {
	var input InventoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	item := models.InventoryItem{
		Domain:          input.Domain,
		Category:        input.Category,
		DomainAuthority: input.DomainAuthority,
		MonthlyTraffic:  input.MonthlyTraffic,
		GuestPostPrice:  input.GuestPostPrice,
		ArticleFee:      input.ArticleFee,
		ContactEmail:    input.ContactEmail,
		IsActive:        input.IsActive,
	}
	if err := config.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inventory item"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateInventoryHandler replaces an inventory record's fields.
func UpdateInventoryHandler(c *gin.Context) {
	var item models.InventoryItem
	if err := config.DB.First(&item, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		return
	}

	var input InventoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	item.Domain = input.Domain
	item.Category = input.Category
	item.DomainAuthority = input.DomainAuthority
	item.MonthlyTraffic = input.MonthlyTraffic
	item.GuestPostPrice = input.GuestPostPrice
	item.ArticleFee = input.ArticleFee
	item.ContactEmail = input.ContactEmail
	if input.IsActive != nil {
		item.IsActive = input.IsActive
	}

	if err := config.DB.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update inventory item"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteInventoryHandler soft-deletes an inventory record. Orders keep only a
// weak reference, so existing orders are unaffected.
func DeleteInventoryHandler(c *gin.Context) {
	if err := config.DB.Delete(&models.InventoryItem{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete inventory item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
