package database

import (
	"database/sql"
	"fmt"
)

// CategoryRepo handles database operations for feed categories
type CategoryRepo struct {
	db *DB
}

var _ CategoryRepository = (*CategoryRepo)(nil)

func NewCategoryRepository(db *DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) GetCategory(id string) (*Category, error) {
	var category Category
	err := r.db.QueryRow(`
		SELECT id, title, COALESCE(image, ''), created_at, updated_at
		FROM categories
		WHERE id = $1
	`, id).Scan(&category.ID, &category.Title, &category.Image, &category.CreatedAt, &category.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &category, nil
}

func (r *CategoryRepo) GetCategoryByTitle(title string) (*Category, error) {
	var category Category
	err := r.db.QueryRow(`
		SELECT id, title, COALESCE(image, ''), created_at, updated_at
		FROM categories
		WHERE title = $1
	`, title).Scan(&category.ID, &category.Title, &category.Image, &category.CreatedAt, &category.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category by title: %w", err)
	}

	return &category, nil
}

func (r *CategoryRepo) UpsertCategory(title, image string) (string, error) {
	var id string
	err := r.db.QueryRow(`
		INSERT INTO categories (title, image)
		VALUES ($1, $2)
		ON CONFLICT (title) DO UPDATE SET
			image = EXCLUDED.image,
			updated_at = NOW()
		RETURNING id
	`, title, image).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to upsert category: %w", err)
	}

	return id, nil
}
