package models

// Budget represents a spending plan owned by a user
type Budget struct {
	Base
	Name     string    `gorm:"size:100;not null" json:"name"`
	Amount   float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	UserID   uint      `gorm:"not null;index" json:"userId"`
	Expenses []Expense `gorm:"foreignKey:BudgetID" json:"expenses,omitempty"`
}

// OwnedBy reports whether the budget belongs to the given user.
func (b *Budget) OwnedBy(userID uint) bool {
	return b.UserID == userID
}
