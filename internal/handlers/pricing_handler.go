package handlers

import (
	"net/http"

	"github.com/DhanaADS/crm-dashboard-sub000/config"
	"github.com/DhanaADS/crm-dashboard-sub000/models"

	"github.com/Knetic/govaluate"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PricingRuleInput struct {
	LinkType    string `json:"linkType" binding:"required"`
	Formula     string `json:"formula" binding:"required"`
	Description string `json:"description"`
}

// applyPricingRule evaluates the formula stored for a link type over the
// inventory record's price and fee. Returns applied=false when no rule exists
// for the link type.
func applyPricingRule(linkType string, price, fee float64) (float64, bool, error) {
	var rule models.PricingRule
	err := config.DB.Where("link_type = ?", linkType).First(&rule).Error
	if err == gorm.ErrRecordNotFound {
		return fee, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	expr, err := govaluate.NewEvaluableExpression(rule.Formula)
	if err != nil {
		return 0, false, err
	}
	result, err := expr.Evaluate(map[string]interface{}{
		"price": price,
		"fee":   fee,
	})
	if err != nil {
		return 0, false, err
	}
	value, ok := result.(float64)
	if !ok {
		return 0, false, gorm.ErrInvalidData
	}
	return value, true, nil
}

// validateFormula compiles a formula and evaluates it against sample values,
// so a rule that would break the quote path is rejected at save time.
func validateFormula(formula string) error {
	expr, err := govaluate.NewEvaluableExpression(formula)
	if err != nil {
		return err
	}
	_, err = expr.Evaluate(map[string]interface{}{"price": 100.0, "fee": 10.0})
	return err
}

// ListPricingRulesHandler returns all link-type pricing rules.
func ListPricingRulesHandler(c *gin.Context) {
	var rules []models.PricingRule
	if err := config.DB.Order("link_type asc").Find(&rules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch pricing rules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rules})
}

// SavePricingRuleHandler upserts the rule for a link type.
func SavePricingRuleHandler(c *gin.Context) {
	var input PricingRuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if err := validateFormula(input.Formula); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid formula: " + err.Error()})
		return
	}

	rule := models.PricingRule{
		LinkType:    input.LinkType,
		Formula:     input.Formula,
		Description: input.Description,
	}
	err := config.DB.Where(models.PricingRule{LinkType: input.LinkType}).
		Assign(models.PricingRule{Formula: input.Formula, Description: input.Description}).
		FirstOrCreate(&rule).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save pricing rule"})
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DeletePricingRuleHandler removes a rule; quotes for that link type fall
// back to the raw inventory fee.
func DeletePricingRuleHandler(c *gin.Context) {
	if err := config.DB.Delete(&models.PricingRule{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete pricing rule"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
