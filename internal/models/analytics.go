package models

// CreateSessionRequest represents the body of POST /api/analytics/session
type CreateSessionRequest struct {
	AnonymousID string  `json:"anonymous_id" binding:"required"`
	Locale      string  `json:"locale"`
	DeviceType  string  `json:"device_type"`
	Referrer    *string `json:"referrer"`
}

// CreateSessionResponse returns the id of the stored session
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// TrackEventRequest represents the body of POST /api/analytics/event
type TrackEventRequest struct {
	SessionID string         `json:"session_id" binding:"required"`
	EventType string         `json:"event_type" binding:"required"`
	EventData map[string]any `json:"event_data"`
}

// AnalyticsSession is a sanitised session ready to be stored
type AnalyticsSession struct {
	AnonymousID string
	Locale      string
	DeviceType  string
	Referrer    *string
}
