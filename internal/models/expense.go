package models

// Expense is a single spending entry inside a budget
type Expense struct {
	Base
	Name     string  `gorm:"size:100;not null" json:"name"`
	Amount   float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
	BudgetID uint    `gorm:"not null;index" json:"budgetId"`
}
