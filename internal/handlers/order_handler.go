package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/DhanaADS/crm-dashboard-sub000/config"
	"github.com/DhanaADS/crm-dashboard-sub000/external/telegram"
	"github.com/DhanaADS/crm-dashboard-sub000/internal/budget"
	"github.com/DhanaADS/crm-dashboard-sub000/models"

	"github.com/divan/num2words"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Notifier sends the fire-and-forget order notifications. Nil when the
// Telegram bot is not configured.
var Notifier *telegram.Client

// --- Input structures ---

type SiteSelectionInput struct {
	SiteName            string  `json:"siteName" binding:"required"`
	Keyword             string  `json:"keyword"`
	ClientLink          string  `json:"clientLink"`
	SitePrice           float64 `json:"sitePrice" binding:"gte=0"`
	ArticleFee          float64 `json:"articleFee" binding:"gte=0"`
	SelectedInventoryID *uint   `json:"selectedInventoryId"`
}

type CreateOrderInput struct {
	ClientName   string               `json:"clientName" binding:"required"`
	Email        string               `json:"email" binding:"required,email"`
	Tag          string               `json:"tag"`
	Sites        []SiteSelectionInput `json:"sites" binding:"required,min=1,dive"`
	TotalBudget  float64              `json:"totalBudget" binding:"required,gt=0"`
	ProfitMargin float64              `json:"profitMargin" binding:"gte=0,lte=100"`
}

type UpdateOrderStatusInput struct {
	Status string `json:"status" binding:"required,oneof=created in_progress completed cancelled"`
}

func (in *CreateOrderInput) draft() budget.Draft {
	d := budget.Draft{
		TotalBudget:         in.TotalBudget,
		ProfitMarginPercent: in.ProfitMargin,
	}
	for _, s := range in.Sites {
		d.Sites = append(d.Sites, budget.Site{SitePrice: s.SitePrice, ArticleFee: s.ArticleFee})
	}
	return d
}

// --- Handlers ---

// PreviewOrderHandler recomputes the cost/profit breakdown for a draft
// without writing anything. The dashboard calls it while the form is edited;
// nothing the client computed is trusted at submit time either way.
func PreviewOrderHandler(c *gin.Context) {
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, budget.Calculate(input.draft()))
}

// CreateOrderHandler validates a submitted draft server-side and persists the
// order with its site line items in a single transaction. The budget check is
// always re-derived here: a client-computed flag never reaches a write.
func CreateOrderHandler(c *gin.Context) {
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	calc := budget.Calculate(input.draft())
	if !calc.IsWithinBudget {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order exceeds available budget"})
		return
	}

	order := models.Order{
		OrderID:             uuid.NewString(),
		ClientName:          input.ClientName,
		ClientEmail:         input.Email,
		Tag:                 input.Tag,
		TotalBudget:         input.TotalBudget,
		ProfitMarginPercent: input.ProfitMargin,
		Status:              models.OrderStatusCreated,
	}
	for _, s := range input.Sites {
		order.Sites = append(order.Sites, models.OrderSite{
			SiteName:          s.SiteName,
			Keyword:           s.Keyword,
			ClientLink:        s.ClientLink,
			SitePrice:         s.SitePrice,
			ArticleFee:        s.ArticleFee,
			SourceInventoryID: s.SelectedInventoryID,
		})
	}

	// One transaction for the order and all of its sites: either everything
	// is visible or nothing is.
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	})
	if err != nil {
		slog.Error("Failed to create order", "error", err, "client", input.Email)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	notifyOrderCreated(&order, &calc)
	GlobalHub.Broadcast(EventOrderCreated, gin.H{
		"orderId":    order.OrderID,
		"clientName": order.ClientName,
		"sites":      len(order.Sites),
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orderId": order.OrderID,
		"message": fmt.Sprintf("Order created with %d site(s)", len(order.Sites)),
		"data": gin.H{
			"orderId":            order.OrderID,
			"clientName":         order.ClientName,
			"email":              order.ClientEmail,
			"tag":                order.Tag,
			"status":             order.Status,
			"createdAt":          order.CreatedAt,
			"totalBudget":        order.TotalBudget,
			"profitMargin":       order.ProfitMarginPercent,
			"sites":              order.Sites,
			"totalSiteCosts":     calc.TotalSiteCosts,
			"totalArticleFees":   calc.TotalArticleFees,
			"totalCosts":         calc.TotalCosts,
			"availableBudget":    calc.AvailableBudget,
			"profit":             calc.Profit,
			"actualProfitMargin": calc.ProfitMarginActual,
			"totalBudgetWords":   amountInWords(order.TotalBudget),
		},
	})
}

// ListOrdersHandler returns a paginated list of orders, newest first.
func ListOrdersHandler(c *gin.Context) {
	query := config.DB.Model(&models.Order{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	// Fork the filtered query so Count and Find do not share a statement.
	query = query.Session(&gorm.Session{})

	var totalRows int64
	query.Count(&totalRows)

	var orders []models.Order
	if err := query.Preload("Sites").Order("created_at desc").Scopes(Paginate(c)).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch orders"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, orders, totalRows))
}

// GetOrderHandler returns one order with its sites and the derived breakdown.
func GetOrderHandler(c *gin.Context) {
	order, ok := findOrder(c)
	if !ok {
		return
	}

	d := budget.Draft{
		TotalBudget:         order.TotalBudget,
		ProfitMarginPercent: order.ProfitMarginPercent,
	}
	for _, s := range order.Sites {
		d.Sites = append(d.Sites, budget.Site{SitePrice: s.SitePrice, ArticleFee: s.ArticleFee})
	}

	c.JSON(http.StatusOK, gin.H{"order": order, "calculation": budget.Calculate(d)})
}

// UpdateOrderStatusHandler moves an order through its lifecycle.
func UpdateOrderStatusHandler(c *gin.Context) {
	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	order.Status = input.Status
	if err := config.DB.Save(order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// DeleteOrderHandler removes an order and its site rows together.
func DeleteOrderHandler(c *gin.Context) {
	order, ok := findOrder(c)
	if !ok {
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_row_id = ?", order.ID).Delete(&models.OrderSite{}).Error; err != nil {
			return err
		}
		return tx.Delete(order).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExportOrdersHandler streams all orders with their cost breakdowns as an
// Excel workbook.
func ExportOrdersHandler(c *gin.Context) {
	var orders []models.Order
	if err := config.DB.Preload("Sites").Order("created_at desc").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders for export"})
		return
	}

	f := excelize.NewFile()
	sheetName := "Orders"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Order ID", "Created", "Client", "Email", "Status", "Total Budget", "Margin %", "Sites", "Total Costs", "Profit"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, o := range orders {
		d := budget.Draft{TotalBudget: o.TotalBudget, ProfitMarginPercent: o.ProfitMarginPercent}
		for _, s := range o.Sites {
			d.Sites = append(d.Sites, budget.Site{SitePrice: s.SitePrice, ArticleFee: s.ArticleFee})
		}
		calc := budget.Calculate(d)

		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), o.OrderID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), o.CreatedAt.Format("2006-01-02 15:04"))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), o.ClientName)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), o.ClientEmail)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), o.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), o.TotalBudget)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), o.ProfitMarginPercent)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), len(o.Sites))
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), calc.TotalCosts)
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), calc.Profit)
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename=orders_export.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		slog.Error("Failed to write Excel export", "error", err)
	}
}

// findOrder loads an order by its public UUID, answering 404 itself on miss.
func findOrder(c *gin.Context) (*models.Order, bool) {
	var order models.Order
	err := config.DB.Preload("Sites").Where("order_id = ?", c.Param("id")).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch order"})
		}
		return nil, false
	}
	return &order, true
}

// notifyOrderCreated pushes a Telegram message about the new order.
// Fire and forget: failures are logged and never surfaced to the caller.
func notifyOrderCreated(order *models.Order, calc *budget.Calculation) {
	if Notifier == nil {
		return
	}
	text := fmt.Sprintf("New order %s from %s: %d site(s), budget %.2f (%s), profit %.2f",
		order.OrderID, order.ClientName, len(order.Sites),
		order.TotalBudget, amountInWords(order.TotalBudget), calc.Profit)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := Notifier.SendMessage(ctx, text); err != nil {
			slog.Warn("Telegram notification failed", "error", err, "order_id", order.OrderID)
		}
	}()
}

// amountInWords renders a money amount for confirmations, e.g.
// "five hundred dollars 00 cents".
func amountInWords(amount float64) string {
	dollars := int(amount)
	cents := int(math.Round((amount - float64(dollars)) * 100))
	return fmt.Sprintf("%s dollars %02d cents", num2words.Convert(dollars), cents)
}
