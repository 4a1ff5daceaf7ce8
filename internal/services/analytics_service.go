package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/epeers/whattheyhold/internal/models"
	"github.com/google/uuid"
)

const (
	maxLocaleLen     = 10
	maxDeviceTypeLen = 20
	maxReferrerLen   = 500
	unknownValue     = "unknown"
)

// allowedEventTypes is the closed set of events the frontend may record
var allowedEventTypes = map[string]bool{
	"page_view":     true,
	"session_start": true,
	"search_query":  true,
	"fund_view":     true,
	"map_click":     true,
	"sector_click":  true,
	"compare_funds": true,
}

// AnalyticsStore persists sessions and events
type AnalyticsStore interface {
	CreateSession(ctx context.Context, s *models.AnalyticsSession) (uuid.UUID, error)
	InsertEvent(ctx context.Context, sessionID uuid.UUID, eventType string, data map[string]any) error
}

// AnalyticsService validates and records anonymous usage analytics
type AnalyticsService struct {
	store AnalyticsStore
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// CreateSession stores a session for an anonymous visitor and returns its id
func (s *AnalyticsService) CreateSession(ctx context.Context, req *models.CreateSessionRequest) (string, error) {
	anonID, err := uuid.Parse(strings.TrimSpace(req.AnonymousID))
	if err != nil {
		return "", fmt.Errorf("%w: anonymous_id", ErrInvalidUUID)
	}

	session := &models.AnalyticsSession{
		AnonymousID: anonID.String(),
		Locale:      truncateOr(req.Locale, maxLocaleLen, unknownValue),
		DeviceType:  truncateOr(req.DeviceType, maxDeviceTypeLen, unknownValue),
	}
	if req.Referrer != nil && strings.TrimSpace(*req.Referrer) != "" {
		ref := truncateOr(*req.Referrer, maxReferrerLen, "")
		session.Referrer = &ref
	}

	id, err := s.store.CreateSession(ctx, session)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// TrackEvent records an allowlisted event against a session
func (s *AnalyticsService) TrackEvent(ctx context.Context, req *models.TrackEventRequest) error {
	if !allowedEventTypes[req.EventType] {
		return fmt.Errorf("%w: %q", ErrInvalidEventType, req.EventType)
	}
	sessionID, err := uuid.Parse(strings.TrimSpace(req.SessionID))
	if err != nil {
		return fmt.Errorf("%w: session_id", ErrInvalidUUID)
	}
	return s.store.InsertEvent(ctx, sessionID, req.EventType, req.EventData)
}

// truncateOr trims s and cuts it to at most n runes, returning fallback when empty
func truncateOr(s string, n int, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
