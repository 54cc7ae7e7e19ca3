package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"payout-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetCreators retrieves every creator profile including admins, ordered by
// name. The recalculation run iterates this list in full.
func (s *Store) GetCreators(ctx context.Context) ([]models.Creator, error) {
	var creators []models.Creator
	err := s.db.SelectContext(ctx, &creators, "SELECT * FROM creators ORDER BY name")
	return creators, err
}

// GetCreatorByID retrieves one creator
func (s *Store) GetCreatorByID(ctx context.Context, id string) (*models.Creator, error) {
	var creator models.Creator
	err := s.db.GetContext(ctx, &creator, "SELECT * FROM creators WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("creator not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &creator, nil
}

// CreateCreator inserts a new creator profile
func (s *Store) CreateCreator(ctx context.Context, creator *models.Creator) error {
	query := `
		INSERT INTO creators (id, name, email, revenue_share, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	return s.db.GetContext(ctx, &creator.CreatedAt, query,
		creator.ID, creator.Name, creator.Email, creator.RevenueShare, creator.Role)
}

// UpdateCreatorShare updates a creator's revenue share. Admin rows are
// excluded at the SQL level so a stray id can never change one.
func (s *Store) UpdateCreatorShare(ctx context.Context, id string, share float64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE creators SET revenue_share = $1 WHERE id = $2 AND role = $3",
		share, id, models.RoleCreator)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("creator not found or not editable: %s", id)
	}
	return nil
}

// GetTitlesByCreator retrieves the creator's content rows for statements
func (s *Store) GetTitlesByCreator(ctx context.Context, creatorID string) ([]models.Title, error) {
	var titles []models.Title
	err := s.db.SelectContext(ctx, &titles,
		"SELECT * FROM titles WHERE creator_id = $1 ORDER BY title", creatorID)
	return titles, err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
