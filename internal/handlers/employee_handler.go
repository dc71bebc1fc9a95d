package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DhanaADS/crm-dashboard-sub000/config"
	"github.com/DhanaADS/crm-dashboard-sub000/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type EmployeeInput struct {
	FullName   string     `json:"fullName" binding:"required"`
	Email      string     `json:"email" binding:"required,email"`
	Phone      string     `json:"phone"`
	JobTitle   string     `json:"jobTitle"`
	Department string     `json:"department"`
	Salary     float64    `json:"salary" binding:"gte=0"`
	HireDate   *time.Time `json:"hireDate"`
	IsActive   *bool      `json:"isActive"`
}

// ListEmployeesHandler returns a paginated employee list with optional
// name/email/department search.
func ListEmployeesHandler(c *gin.Context) {
	query := config.DB.Model(&models.Employee{})

	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(department) LIKE ?",
			pattern, pattern, pattern)
	}

	// Fork the filtered query so Count and Find do not share a statement.
	query = query.Session(&gorm.Session{})

	var totalRows int64
	query.Count(&totalRows)

	var employees []models.Employee
	if err := query.Order("full_name asc").Scopes(Paginate(c)).Find(&employees).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch employees"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, employees, totalRows))
}

// GetEmployeeHandler returns one employee by ID.
func GetEmployeeHandler(c *gin.Context) {
	var employee models.Employee
	if err := config.DB.First(&employee, c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch employee"})
		}
		return
	}
	c.JSON(http.StatusOK, employee)
}

// CreateEmployeeHandler adds an employee record.
func CreateEmployeeHandler(c *gin.Context) {
	var input EmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	employee := models.Employee{
		FullName:   input.FullName,
		Email:      input.Email,
		Phone:      input.Phone,
		JobTitle:   input.JobTitle,
		Department: input.Department,
		Salary:     input.Salary,
		HireDate:   input.HireDate,
		IsActive:   input.IsActive,
	}
	if err := config.DB.Create(&employee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create employee"})
		return
	}
	c.JSON(http.StatusCreated, employee)
}

// UpdateEmployeeHandler replaces an employee's fields.
func UpdateEmployeeHandler(c *gin.Context) {
	var employee models.Employee
	if err := config.DB.First(&employee, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}

	var input EmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	employee.FullName = input.FullName
	employee.Email = input.Email
	employee.Phone = input.Phone
	employee.JobTitle = input.JobTitle
	employee.Department = input.Department
	employee.Salary = input.Salary
	employee.HireDate = input.HireDate
	if input.IsActive != nil {
		employee.IsActive = input.IsActive
	}

	if err := config.DB.Save(&employee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update employee"})
		return
	}
	c.JSON(http.StatusOK, employee)
}

// DeleteEmployeeHandler soft-deletes an employee record.
func DeleteEmployeeHandler(c *gin.Context) {
	if err := config.DB.Delete(&models.Employee{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete employee"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExportEmployeesHandler streams the employee roster as an Excel workbook.
func ExportEmployeesHandler(c *gin.Context) {
	var employees []models.Employee
	if err := config.DB.Order("full_name asc").Find(&employees).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch employees for export"})
		return
	}

	f := excelize.NewFile()
	sheetName := "Employees"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Full Name", "Email", "Phone", "Job Title", "Department", "Salary", "Hire Date", "Active"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, e := range employees {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), e.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), e.FullName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), e.Email)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), e.Phone)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), e.JobTitle)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), e.Department)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), e.Salary)
		if e.HireDate != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), e.HireDate.Format("2006-01-02"))
		}
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), e.IsActive != nil && *e.IsActive)
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename=employees_export.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		slog.Error("Failed to write Excel export", "error", err)
	}
}
