package utils

import (
	"time"
)

// Notification lifetime constants
const (
	// NotificationTTL is the default lifetime of a committed notification (30 days)
	NotificationTTL = 30 * 24 * time.Hour

	// DraftSessionTTL is the default idle lifetime of a draft session (24 hours)
	DraftSessionTTL = 24 * time.Hour

	// SessionTokenTTL is the default lifetime of a draft session token (24 hours)
	SessionTokenTTL = 24 * time.Hour
)

// Pagination constants
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type contextKey string

// Request-scoped context keys
const (
	RequestIDKey contextKey = "request_id"
	UserAgentKey contextKey = "user_agent"
	IPAddressKey contextKey = "ip_address"
	EndpointKey  contextKey = "endpoint"
	TimeoutKey   contextKey = "timeout"
	SessionIDKey contextKey = "session_id"
)
