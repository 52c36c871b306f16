// internal/repository/properties.go
package repository

import (
	"context"
	"database/sql"

	"autoassign-worker/internal/common/errors"
	"autoassign-worker/internal/common/logger"
	"autoassign-worker/internal/models"
)

// propertyByPlanQuery only returns active properties without a home warranty;
// a plan filtered out here is not eligible for automatic assignment.
const propertyByPlanQuery = `
	select distinct pr.presented_address,
	       p.property_plan_id,
	       pr.property_additional_info,
	       pr.pm_id location_id,
	       lr.display_name "location"
	from "Plans" p
	inner join "Properties" pr on pr.property_id = p.property_id
	inner join "Location_Rules" lr on lr.pm_account_id = pr.pm_id
	where (home_warranty = 'null' or home_warranty is null)
	  and pr.active = 1
	  and p.property_plan_id = $1`

// PropertyRepository reads property details from the reporting store.
type PropertyRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPropertyRepository(db *sql.DB, log logger.Logger) *PropertyRepository {
	return &PropertyRepository{db: db, logger: log}
}

// FindByPlanID returns the active, warranty-free property behind a plan.
// Returns (nil, nil) when the plan has no such property.
func (r *PropertyRepository) FindByPlanID(ctx context.Context, planID string) (*models.PropertyRecord, error) {
	row := r.db.QueryRowContext(ctx, propertyByPlanQuery, planID)

	var rec models.PropertyRecord
	var additionalInfo sql.NullString
	err := row.Scan(
		&rec.Address,
		&rec.PropertyPlanID,
		&additionalInfo,
		&rec.LocationID,
		&rec.Location,
	)
	if err == sql.ErrNoRows {
		r.logger.Warn("property has home warranty or is inactive", map[string]interface{}{"plan_id": planID})
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("property_by_plan", err)
	}

	if additionalInfo.Valid {
		rec.AdditionalInfo = additionalInfo.String
	}

	return &rec, nil
}
