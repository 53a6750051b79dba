package models

// User is an account record. Token holds the pending confirmation or
// password-reset code and is nil otherwise.
type User struct {
	Base
	Name      string   `gorm:"size:60;not null" json:"name"`
	Email     string   `gorm:"size:60;uniqueIndex;not null" json:"email"`
	Password  string   `gorm:"size:60;not null" json:"-"`
	Token     *string  `gorm:"size:6;index" json:"-"`
	Confirmed bool     `gorm:"not null;default:false" json:"confirmed"`
	Budgets   []Budget `gorm:"foreignKey:UserID" json:"budgets,omitempty"`
}
