package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/shipfastordie/shipboard/internal/apperror"
	"github.com/shipfastordie/shipboard/internal/models"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{
		db: db,
	}
}

// Create inserts a new product row. A duplicate (owner, name) pair hits
// the unique index and comes back as a conflict error.
func (r *ProductRepository) Create(product *models.Repository) error {
	query := `
		INSERT INTO products (id, name, description, html_url, owner, avatar_url, language,
			stargazers_count, num_code_files, repo_created_at, repo_pushed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		product.ID,
		product.Name,
		product.Description,
		product.HTMLURL,
		product.Owner,
		product.AvatarURL,
		product.Language,
		product.StargazersCount,
		product.NumCodeFiles,
		models.FormatTime(product.RepoCreatedAt),
		models.FormatTime(product.RepoPushedAt),
		models.FormatTime(product.CreatedAt),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return apperror.Conflict("product", fmt.Sprintf("%s/%s", product.Owner, product.Name))
		}
		return apperror.Store(err)
	}
	return nil
}

// List returns all products, optionally filtered by owner, sorted by
// star count for the leaderboard.
func (r *ProductRepository) List(owner string) ([]*models.Repository, error) {
	query := `SELECT id, name, description, html_url, owner, avatar_url, language,
		stargazers_count, num_code_files, repo_created_at, repo_pushed_at, created_at
		FROM products`

	var args []interface{}
	if owner != "" {
		query += ` WHERE owner = ?`
		args = append(args, owner)
	}
	query += ` ORDER BY stargazers_count DESC, name ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, apperror.Store(err)
	}
	defer rows.Close()

	var products []*models.Repository
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Store(err)
	}

	return products, nil
}

// Get retrieves a single product by its (owner, name) natural key
func (r *ProductRepository) Get(owner, name string) (*models.Repository, error) {
	query := `SELECT id, name, description, html_url, owner, avatar_url, language,
		stargazers_count, num_code_files, repo_created_at, repo_pushed_at, created_at
		FROM products WHERE owner = ? AND name = ?`

	product, err := scanProduct(r.db.QueryRow(query, owner, name).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("product", fmt.Sprintf("%s/%s", owner, name))
		}
		return nil, err
	}
	return product, nil
}

// Delete removes the product rows matching (owner, name)
func (r *ProductRepository) Delete(owner, name string) error {
	query := `DELETE FROM products WHERE owner = ? AND name = ?`

	if _, err := r.db.Exec(query, owner, name); err != nil {
		return apperror.Store(err)
	}
	return nil
}

// scanProduct reads one product row via the given Scan function, parsing
// the stored ISO-8601 timestamps back into time values.
func scanProduct(scan func(dest ...interface{}) error) (*models.Repository, error) {
	var product models.Repository
	var repoCreatedAt, repoPushedAt, createdAt string

	err := scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.HTMLURL,
		&product.Owner,
		&product.AvatarURL,
		&product.Language,
		&product.StargazersCount,
		&product.NumCodeFiles,
		&repoCreatedAt,
		&repoPushedAt,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperror.Store(err)
	}

	for _, ts := range []struct {
		raw  string
		dest *time.Time
	}{
		{repoCreatedAt, &product.RepoCreatedAt},
		{repoPushedAt, &product.RepoPushedAt},
		{createdAt, &product.CreatedAt},
	} {
		t, err := models.ParseTime(ts.raw)
		if err != nil {
			return nil, apperror.Store(err)
		}
		*ts.dest = t
	}

	return &product, nil
}
