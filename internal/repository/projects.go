// internal/repository/projects.go
package repository

import (
	"context"
	"database/sql"
	"strings"

	"autoassign-worker/internal/common/errors"
	"autoassign-worker/internal/common/logger"
	"autoassign-worker/internal/models"
)

// projectByVideoQuery matches the uploaded video against project files. The
// alternate pattern covers uploads that were re-keyed under propertydoc_qa/.
const projectByVideoQuery = `
	select upper(p.project_id::text) project_id,
	       p.project_status_string,
	       upper(property_plan_id::text) property_plan_id,
	       project_number,
	       pf.s3_url video_url
	from "Projects" p
	inner join "Project_Files" pf on pf.project_id = p.project_id
	where (pf.s3_url ilike $1 or pf.s3_url ilike $2) and created_by_tenant = 1
	order by date_created desc
	limit 1`

// ProjectRepository reads tenant projects from the operational store.
type ProjectRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewProjectRepository(db *sql.DB, log logger.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: log}
}

// FindByVideoKey looks up the newest tenant-created project whose files match
// the source key. Returns (nil, nil) when no project matches.
func (r *ProjectRepository) FindByVideoKey(ctx context.Context, key string) (*models.ProjectRecord, error) {
	primary := "%" + key + "%"
	alternate := "%propertydoc_qa/" + basename(key) + "%"

	row := r.db.QueryRowContext(ctx, projectByVideoQuery, primary, alternate)

	var rec models.ProjectRecord
	err := row.Scan(
		&rec.ProjectID,
		&rec.StatusString,
		&rec.PropertyPlanID,
		&rec.ProjectNumber,
		&rec.VideoURL,
	)
	if err == sql.ErrNoRows {
		r.logger.Warn("no project matched video key", map[string]interface{}{"key": key})
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("project_by_video", err)
	}

	return &rec, nil
}

func basename(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}
