package database

import (
	"database/sql"
	"fmt"
	"time"
)

// AdvertisementRepo handles database operations for advertisement campaigns.
// Campaign lifecycle (create/delete) is owned by an external management
// surface; this repository only reads campaigns and counts views.
type AdvertisementRepo struct {
	db *DB
}

var _ AdvertisementRepository = (*AdvertisementRepo)(nil)

func NewAdvertisementRepository(db *DB) *AdvertisementRepo {
	return &AdvertisementRepo{db: db}
}

const advertisementColumns = `id, name, COALESCE(title, ''), COALESCE(image, ''), COALESCE(url, ''),
	       categories_ids, from_date, to_date, priority, display_order, views,
	       created_at, updated_at`

// GetActiveAdvertisements returns campaigns whose date window includes the
// given day. The lower bound is inclusive; the upper bound is inclusive or
// unbounded (NULL to_date).
func (r *AdvertisementRepo) GetActiveAdvertisements(day time.Time) ([]Advertisement, error) {
	rows, err := r.db.Query(`
		SELECT `+advertisementColumns+`
		FROM advertisements
		WHERE from_date <= $1::date
		  AND (to_date IS NULL OR to_date >= $1::date)
	`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get active advertisements: %w", err)
	}
	defer rows.Close()

	var advertisements []Advertisement
	for rows.Next() {
		var ad Advertisement
		err := rows.Scan(
			&ad.ID, &ad.Name, &ad.Title, &ad.Image, &ad.URL,
			&ad.CategoriesIDs, &ad.FromDate, &ad.ToDate, &ad.Priority,
			&ad.DisplayOrder, &ad.Views, &ad.CreatedAt, &ad.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan advertisement row: %w", err)
		}
		advertisements = append(advertisements, ad)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating advertisement rows: %w", err)
	}

	return advertisements, nil
}

func (r *AdvertisementRepo) GetAdvertisement(id string) (*Advertisement, error) {
	var ad Advertisement
	err := r.db.QueryRow(`
		SELECT `+advertisementColumns+`
		FROM advertisements
		WHERE id = $1
	`, id).Scan(
		&ad.ID, &ad.Name, &ad.Title, &ad.Image, &ad.URL,
		&ad.CategoriesIDs, &ad.FromDate, &ad.ToDate, &ad.Priority,
		&ad.DisplayOrder, &ad.Views, &ad.CreatedAt, &ad.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get advertisement: %w", err)
	}

	return &ad, nil
}

// IncrementViews counts one billed view. The increment happens in SQL so
// concurrent allocations never lose updates.
func (r *AdvertisementRepo) IncrementViews(id string) error {
	_, err := r.db.Exec(`
		UPDATE advertisements
		SET views = views + 1, updated_at = NOW()
		WHERE id = $1
	`, id)

	if err != nil {
		return fmt.Errorf("failed to increment advertisement views: %w", err)
	}

	return nil
}
