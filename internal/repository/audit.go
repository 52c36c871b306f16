// internal/repository/audit.go
package repository

import (
	"context"
	"database/sql"

	"autoassign-worker/internal/common/errors"
	"autoassign-worker/internal/common/logger"
)

const markAssignedQuery = `update "AUDIT_VIDEOS_TO_S3" set automatic_assignment = true where key like $1`

// VideoAuditRepository flags videos whose projects were assigned automatically.
type VideoAuditRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewVideoAuditRepository(db *sql.DB, log logger.Logger) *VideoAuditRepository {
	return &VideoAuditRepository{db: db, logger: log}
}

// MarkAutomaticAssignment sets the automatic_assignment flag on every audit
// row whose key starts with the source key.
func (r *VideoAuditRepository) MarkAutomaticAssignment(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, markAssignedQuery, key+"%")
	if err != nil {
		return errors.NewPersistenceFailedError("mark_automatic_assignment", err)
	}

	rows, _ := result.RowsAffected()
	r.logger.Info("marked automatic assignment", map[string]interface{}{
		"key":  key,
		"rows": rows,
	})
	return nil
}
