package repositories

import (
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"annexe9-backend/internal/config"
)

// AuditRepository appends order audit entries. Failures here are reported to
// the caller but never block the business operation that triggered them.
type AuditRepository struct {
	DB *sql.DB
}

func (r AuditRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

func (r AuditRepository) Append(orderID uuid.UUID, action string, userID int64, details map[string]any) error {
	var payload any
	if len(details) > 0 {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		payload = string(b)
	}
	var user any
	if userID > 0 {
		user = userID
	}
	_, err := r.db().Exec(`
		INSERT INTO order_audit_logs (order_id, action, user_id, details)
		VALUES (?,?,?,?)`,
		orderID.String(), action, user, payload)
	return err
}
