package services

import (
	"encoding/json"

	"cashtrackr/internal/logger"
	"cashtrackr/internal/models"

	"gorm.io/gorm"
)

// Audited actions.
const (
	ActionCreateAccount  = "CREATE_ACCOUNT"
	ActionConfirmAccount = "CONFIRM_ACCOUNT"
	ActionForgotPassword = "FORGOT_PASSWORD"
	ActionResetPassword  = "RESET_PASSWORD"
	ActionUpdatePassword = "UPDATE_PASSWORD"
	ActionCreateBudget   = "CREATE_BUDGET"
	ActionUpdateBudget   = "UPDATE_BUDGET"
	ActionDeleteBudget   = "DELETE_BUDGET"
	ActionCreateExpense  = "CREATE_EXPENSE"
	ActionUpdateExpense  = "UPDATE_EXPENSE"
	ActionDeleteExpense  = "DELETE_EXPENSE"
)

// Audited resource types.
const (
	ResourceUser    = "user"
	ResourceBudget  = "budget"
	ResourceExpense = "expense"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{}) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}
