package repository

import (
	"context"
	"fmt"

	"github.com/epeers/whattheyhold/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnalyticsRepository stores anonymous usage sessions and events
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// CreateSession inserts a session and returns its generated id
func (r *AnalyticsRepository) CreateSession(ctx context.Context, s *models.AnalyticsSession) (uuid.UUID, error) {
	query := `
		INSERT INTO analytics_sessions (anonymous_id, locale, device_type, referrer)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, query, s.AnonymousID, s.Locale, s.DeviceType, s.Referrer).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create analytics session: %w", err)
	}
	return id, nil
}

// InsertEvent records an event against a session
func (r *AnalyticsRepository) InsertEvent(ctx context.Context, sessionID uuid.UUID, eventType string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	query := `
		INSERT INTO analytics_events (session_id, event_type, event_data)
		VALUES ($1, $2, $3)
	`
	if _, err := r.pool.Exec(ctx, query, sessionID, eventType, data); err != nil {
		return fmt.Errorf("failed to insert analytics event: %w", err)
	}
	return nil
}
