package models

// AuditLog is one account, budget or expense mutation. Changes holds a JSON
// object of the fields involved; passwords and tokens never land here.
type AuditLog struct {
	Base
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	Action       string `gorm:"size:64;not null" json:"action"`
	ResourceType string `gorm:"size:64;not null" json:"resource_type"`
	ResourceID   uint   `gorm:"not null;default:0" json:"resource_id"`
	IPAddress    string `gorm:"size:64" json:"ip_address"`
	Changes      string `gorm:"type:text" json:"changes,omitempty"`
}
