// internal/app/system/auditlog/auditlog.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/lineagehub/lineagehub/internal/app/store/audit"
	"github.com/lineagehub/lineagehub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (register, login, logout).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for mutation events (tree, membership, and member changes).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// Logger provides convenience methods for recording audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
// A nil Logger is a no-op, so handlers can run without one in tests.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FamilyTreeID != nil {
		fields = append(fields, zap.String("family_tree_id", event.FamilyTreeID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// Logging destination is controlled per category: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.config.Auth
	if event.Category == audit.CategoryAdmin {
		setting = l.config.Admin
	}

	switch setting {
	case "off":
		return
	case "db":
		l.logToStore(ctx, event)
	case "log":
		l.logToZap(event)
	default: // "all" and unrecognized values log everywhere
		l.logToStore(ctx, event)
		l.logToZap(event)
	}
}

func (l *Logger) logToStore(ctx context.Context, event audit.Event) {
	if l.store == nil {
		return
	}
	if err := l.store.Insert(ctx, event); err != nil {
		l.zapLog.Error("audit event write failed",
			zap.String("event_type", event.EventType),
			zap.Error(err))
	}
}

func authEvent(r *http.Request, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		Success:   success,
		IP:        ratelimit.ClientIP(r),
	}
}

func adminEvent(r *http.Request, eventType string, actorID primitive.ObjectID, treeID *primitive.ObjectID) audit.Event {
	return audit.Event{
		Category:     audit.CategoryAdmin,
		EventType:    eventType,
		Success:      true,
		ActorID:      &actorID,
		FamilyTreeID: treeID,
		IP:           ratelimit.ClientIP(r),
	}
}

// UserRegistered records a successful account creation.
func (l *Logger) UserRegistered(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := authEvent(r, "user_registered", true)
	e.UserID = &userID
	l.Log(ctx, e)
}

// LoginSuccess records a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := authEvent(r, "login_success", true)
	e.UserID = &userID
	l.Log(ctx, e)
}

// LoginFailedUserNotFound records a sign-in attempt for an unknown email.
// The attempted address goes in details, not in the response to the client.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	e := authEvent(r, "login_failed", false)
	e.FailureReason = "user_not_found"
	e.Details = map[string]string{"attempted_email": attemptedEmail}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword records a sign-in attempt with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := authEvent(r, "login_failed", false)
	e.UserID = &userID
	e.FailureReason = "wrong_password"
	l.Log(ctx, e)
}

// LoginFailedUserDisabled records a sign-in attempt on a disabled account.
func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := authEvent(r, "login_failed", false)
	e.UserID = &userID
	e.FailureReason = "user_disabled"
	l.Log(ctx, e)
}

// LoginFailedRateLimit records a sign-in attempt blocked by the rate limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, attemptedEmail string) {
	e := authEvent(r, "login_failed", false)
	e.FailureReason = "rate_limited"
	e.Details = map[string]string{"attempted_email": attemptedEmail}
	l.Log(ctx, e)
}

// Logout records a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := authEvent(r, "logout", true)
	e.UserID = &userID
	l.Log(ctx, e)
}

// TreeCreated records a new family tree.
func (l *Logger) TreeCreated(ctx context.Context, r *http.Request, actorID, treeID primitive.ObjectID, name string) {
	e := adminEvent(r, "tree_created", actorID, &treeID)
	e.Details = map[string]string{"name": name}
	l.Log(ctx, e)
}

// MembershipGranted records access being granted to a tree.
func (l *Logger) MembershipGranted(ctx context.Context, r *http.Request, actorID, targetUserID, treeID primitive.ObjectID, role string) {
	e := adminEvent(r, "membership_granted", actorID, &treeID)
	e.UserID = &targetUserID
	e.Details = map[string]string{"role": role}
	l.Log(ctx, e)
}

// MembershipRevoked records access being revoked from a tree.
func (l *Logger) MembershipRevoked(ctx context.Context, r *http.Request, actorID, targetUserID, treeID primitive.ObjectID) {
	e := adminEvent(r, "membership_revoked", actorID, &treeID)
	e.UserID = &targetUserID
	l.Log(ctx, e)
}

// MemberCreated records a new member record in a tree.
func (l *Logger) MemberCreated(ctx context.Context, r *http.Request, actorID, treeID, memberID primitive.ObjectID) {
	e := adminEvent(r, "member_created", actorID, &treeID)
	e.Details = map[string]string{"member_id": memberID.Hex()}
	l.Log(ctx, e)
}

// MemberUpdated records an edit to a member record.
func (l *Logger) MemberUpdated(ctx context.Context, r *http.Request, actorID, treeID, memberID primitive.ObjectID) {
	e := adminEvent(r, "member_updated", actorID, &treeID)
	e.Details = map[string]string{"member_id": memberID.Hex()}
	l.Log(ctx, e)
}

// MemberDeleted records removal of a member record.
func (l *Logger) MemberDeleted(ctx context.Context, r *http.Request, actorID, treeID, memberID primitive.ObjectID) {
	e := adminEvent(r, "member_deleted", actorID, &treeID)
	e.Details = map[string]string{"member_id": memberID.Hex()}
	l.Log(ctx, e)
}
