package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bookline/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrBusinessLineNotFound      = errors.New("business line not found")
	ErrBusinessLineAlreadyExists = errors.New("business line with this name already exists")
)

// BusinessLineRepository defines the interface for business line data access
type BusinessLineRepository interface {
	Create(ctx context.Context, line *domain.BusinessLine) error
	List(ctx context.Context) ([]*domain.BusinessLine, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.BusinessLine, error)
	FindByName(ctx context.Context, name string) (*domain.BusinessLine, error)
}

type businessLineRepository struct {
	db *sql.DB
}

// NewBusinessLineRepository creates a new instance of BusinessLineRepository
func NewBusinessLineRepository(db *sql.DB) BusinessLineRepository {
	return &businessLineRepository{db: db}
}

// Create inserts a new business line into the database using parameterized queries
func (r *businessLineRepository) Create(ctx context.Context, line *domain.BusinessLine) error {
	query := `
		INSERT INTO business_lines (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		line.ID,
		line.Name,
		line.Description,
		line.CreatedAt,
	)

	if err != nil {
		// Unique constraint violation on name
		if strings.Contains(err.Error(), "business_lines_name_key") {
			return ErrBusinessLineAlreadyExists
		}
		return fmt.Errorf("failed to create business line: %w", err)
	}

	return nil
}

// List retrieves all business lines ordered by name
func (r *businessLineRepository) List(ctx context.Context) ([]*domain.BusinessLine, error) {
	query := `
		SELECT id, name, description, created_at
		FROM business_lines
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list business lines: %w", err)
	}
	defer rows.Close()

	lines := []*domain.BusinessLine{}
	for rows.Next() {
		line := &domain.BusinessLine{}
		err := rows.Scan(
			&line.ID,
			&line.Name,
			&line.Description,
			&line.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan business line: %w", err)
		}
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating business lines: %w", err)
	}

	return lines, nil
}

// FindByID retrieves a business line by ID using parameterized queries
func (r *businessLineRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.BusinessLine, error) {
	query := `
		SELECT id, name, description, created_at
		FROM business_lines
		WHERE id = $1
	`

	line := &domain.BusinessLine{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&line.ID,
		&line.Name,
		&line.Description,
		&line.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBusinessLineNotFound
		}
		return nil, fmt.Errorf("failed to find business line by ID: %w", err)
	}

	return line, nil
}

// FindByName retrieves a business line by its unique name
func (r *businessLineRepository) FindByName(ctx context.Context, name string) (*domain.BusinessLine, error) {
	query := `
		SELECT id, name, description, created_at
		FROM business_lines
		WHERE name = $1
	`

	line := &domain.BusinessLine{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&line.ID,
		&line.Name,
		&line.Description,
		&line.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBusinessLineNotFound
		}
		return nil, fmt.Errorf("failed to find business line by name: %w", err)
	}

	return line, nil
}
