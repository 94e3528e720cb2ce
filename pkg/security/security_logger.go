package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType names an auditable security event.
type EventType string

const (
	EventLoginFailed        EventType = "login_failed"
	EventLoginSuccess       EventType = "login_success"
	EventLoginBlockedUser   EventType = "login_blocked_user"
	EventLogout             EventType = "logout"
	EventSessionRejected    EventType = "session_rejected"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventUserBlocked        EventType = "user_blocked"
	EventUserUnblocked      EventType = "user_unblocked"
	EventUserPromoted       EventType = "user_promoted"
	EventUserDeleted        EventType = "user_deleted"
	EventUserDeleteFailed   EventType = "user_delete_failed"
)

// SecurityEvent is one line in the security log.
type SecurityEvent struct {
	Timestamp    time.Time
	Event        EventType
	SubjectType  string // "email", "ip", "user_id"
	SubjectValue string
	ActorID      string
	IP           string
	UserAgent    string
	RequestID    string
	Details      map[string]interface{}
}

type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var defaultLogger *SecurityLogger

// InitSecurityLogger builds the production zap logger and installs it as the default.
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddCaller())
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	sl := NewSecurityLogger(logger, serviceName, environment)
	defaultLogger = sl
	return sl
}

// NewSecurityLogger wraps an existing zap logger.
func NewSecurityLogger(z *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{zapLogger: z, serviceName: serviceName, environment: environment}
}

func DefaultLogger() *SecurityLogger {
	if defaultLogger == nil {
		return InitSecurityLogger("go-todo-backend", getEnvironment())
	}
	return defaultLogger
}

func levelFor(e EventType) zapcore.Level {
	switch e {
	case EventLoginSuccess, EventLogout, EventUserUnblocked:
		return zapcore.InfoLevel
	case EventUserDeleteFailed, EventUnauthorizedAccess:
		return zapcore.ErrorLevel
	}
	return zapcore.WarnLevel
}

func (sl *SecurityLogger) Log(_ context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	fields := []zap.Field{
		zap.String("service", sl.serviceName),
		zap.String("env", sl.environment),
		zap.String("event", string(event.Event)),
		zap.Time("event_time", event.Timestamp),
	}
	if event.SubjectType != "" {
		fields = append(fields,
			zap.String("subject_type", event.SubjectType),
			zap.String("subject_value", maskValue(event.SubjectType, event.SubjectValue)))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	sl.zapLogger.Log(levelFor(event.Event), string(event.Event), fields...)
}

func (sl *SecurityLogger) LogLoginFailed(ctx context.Context, email, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginFailed,
		SubjectType:  "email",
		SubjectValue: email,
		Details:      map[string]interface{}{"reason": reason},
	})
}

func (sl *SecurityLogger) LogLoginSuccess(ctx context.Context, userID, email string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginSuccess,
		SubjectType:  "email",
		SubjectValue: email,
		ActorID:      userID,
	})
}

// LogBlockedLogin records a correct password for an account an admin blocked.
func (sl *SecurityLogger) LogBlockedLogin(ctx context.Context, userID, email string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginBlockedUser,
		SubjectType:  "email",
		SubjectValue: email,
		ActorID:      userID,
	})
}

func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

func (sl *SecurityLogger) LogSessionRejected(ctx context.Context, ip, requestID, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventSessionRejected,
		IP:        ip,
		RequestID: requestID,
		Details:   map[string]interface{}{"reason": reason},
	})
}

func (sl *SecurityLogger) LogUnauthorizedAccess(ctx context.Context, userID, path, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:   EventUnauthorizedAccess,
		ActorID: userID,
		Details: map[string]interface{}{"path": path, "reason": reason},
	})
}

// LogAdminAction records a mutation one admin made to another user's account.
func (sl *SecurityLogger) LogAdminAction(ctx context.Context, event EventType, actorID, targetID string, details map[string]interface{}) {
	sl.Log(ctx, SecurityEvent{
		Event:        event,
		SubjectType:  "user_id",
		SubjectValue: targetID,
		ActorID:      actorID,
		Details:      details,
	})
}

func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// MaskEmail masks an email for logging, e.g. "j***@example.com".
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if len(email) < 3 || at < 0 {
		return "***"
	}
	if at <= 1 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue is a short stable fingerprint for values that must not be logged raw.
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func maskValue(subjectType, value string) string {
	switch subjectType {
	case "email":
		return MaskEmail(value)
	case "ip", "user_id":
		return value
	default:
		return HashValue(value)
	}
}

func getEnvironment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
