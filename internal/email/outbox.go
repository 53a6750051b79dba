package email

import (
	"context"
	"fmt"
	"time"

	"cashtrackr/internal/logger"
	"cashtrackr/internal/metrics"
	"cashtrackr/internal/models"

	"gorm.io/gorm"
)

// maxBackoffShift caps the exponential backoff at 2^16 base intervals.
const maxBackoffShift = 16

// OutboxConfig controls delivery retries.
type OutboxConfig struct {
	MaxAttempts int
	BatchSize   int
	Backoff     time.Duration
}

// Outbox stores messages transactionally and delivers them with retries.
type Outbox struct {
	db      *gorm.DB
	sender  Sender
	metrics *metrics.Metrics
	cfg     OutboxConfig
	now     func() time.Time
}

// NewOutbox creates an Outbox delivering through sender. m may be nil.
func NewOutbox(db *gorm.DB, sender Sender, m *metrics.Metrics, cfg OutboxConfig) *Outbox {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 30 * time.Second
	}
	return &Outbox{db: db, sender: sender, metrics: m, cfg: cfg, now: time.Now}
}

// Enqueue stores msg as pending using tx, which should be the transaction
// that performs the account change the message announces. It returns the
// outbox id to pass to Dispatch once tx has committed.
func (o *Outbox) Enqueue(tx *gorm.DB, msg Message) (string, error) {
	row := models.OutboxMessage{
		Kind:          msg.Kind,
		Recipient:     msg.To,
		RecipientName: msg.ToName,
		Subject:       msg.Subject,
		HTMLBody:      msg.HTMLBody,
		TextBody:      msg.TextBody,
		Status:        models.OutboxStatusPending,
		// Leave room for the immediate Dispatch before Flush considers it due.
		NextAttemptAt: o.now().Add(o.cfg.Backoff),
	}
	if err := tx.Create(&row).Error; err != nil {
		return "", fmt.Errorf("enqueue %s email: %w", msg.Kind, err)
	}
	return row.ID, nil
}

// Dispatch attempts to deliver one pending message now.
func (o *Outbox) Dispatch(ctx context.Context, id string) error {
	var row models.OutboxMessage
	err := o.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.OutboxStatusPending).
		First(&row).Error
	if err != nil {
		return fmt.Errorf("load outbox message %s: %w", id, err)
	}
	_, err = o.deliver(ctx, &row)
	return err
}

// Flush attempts every pending message whose retry time has come, oldest
// first, up to the configured batch size. It returns the number delivered.
func (o *Outbox) Flush(ctx context.Context) (int, error) {
	var rows []models.OutboxMessage
	err := o.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", models.OutboxStatusPending, o.now()).
		Order("next_attempt_at ASC, id ASC").
		Limit(o.cfg.BatchSize).
		Find(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("load due outbox messages: %w", err)
	}

	sent := 0
	for i := range rows {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		ok, err := o.deliver(ctx, &rows[i])
		if err != nil {
			logger.Get().Warnw("email delivery failed",
				"outbox_id", rows[i].ID,
				"kind", rows[i].Kind,
				"attempts", rows[i].Attempts,
				"error", err,
			)
			continue
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

// deliver claims row by bumping its attempt counter, sends it and records
// the outcome. A row claimed concurrently by another caller is skipped.
func (o *Outbox) deliver(ctx context.Context, row *models.OutboxMessage) (bool, error) {
	db := o.db.WithContext(ctx)
	claim := db.Model(&models.OutboxMessage{}).
		Where("id = ? AND status = ? AND attempts = ?", row.ID, models.OutboxStatusPending, row.Attempts).
		Updates(map[string]interface{}{
			"attempts":        row.Attempts + 1,
			"next_attempt_at": o.now().Add(o.cfg.Backoff),
		})
	if claim.Error != nil {
		return false, fmt.Errorf("claim outbox message %s: %w", row.ID, claim.Error)
	}
	if claim.RowsAffected == 0 {
		return false, nil
	}
	row.Attempts++

	sendErr := o.sender.Send(ctx, Message{
		Kind:     row.Kind,
		To:       row.Recipient,
		ToName:   row.RecipientName,
		Subject:  row.Subject,
		HTMLBody: row.HTMLBody,
		TextBody: row.TextBody,
	})

	now := o.now()
	updates := map[string]interface{}{}
	var result string
	switch {
	case sendErr == nil:
		row.Status = models.OutboxStatusSent
		row.SentAt = &now
		updates["status"] = row.Status
		updates["sent_at"] = now
		updates["last_error"] = ""
		result = "sent"
	case row.Attempts >= o.cfg.MaxAttempts:
		row.Status = models.OutboxStatusFailed
		updates["status"] = row.Status
		updates["last_error"] = sendErr.Error()
		result = "failed"
	default:
		row.NextAttemptAt = now.Add(o.backoff(row.Attempts))
		updates["next_attempt_at"] = row.NextAttemptAt
		updates["last_error"] = sendErr.Error()
		result = "retry"
	}
	o.metrics.ObserveEmail(row.Kind, result)

	if err := db.Model(&models.OutboxMessage{}).Where("id = ?", row.ID).Updates(updates).Error; err != nil {
		return false, fmt.Errorf("record outbox result %s: %w", row.ID, err)
	}
	if sendErr != nil {
		return false, sendErr
	}
	return true, nil
}

// backoff returns the delay after the given number of failed attempts:
// Backoff, 2*Backoff, 4*Backoff, ...
func (o *Outbox) backoff(attempts int) time.Duration {
	shift := attempts - 1
	if shift < 0 {
		shift = 0
	}
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	return o.cfg.Backoff << uint(shift)
}
