// internal/app/store/audit/auditstore.go
package audit

import (
	"context"
	"time"

	"github.com/lineagehub/lineagehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Event categories.
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Event is a single audit record. Auth events track sign-in activity,
// admin events track mutations to trees, memberships, and members.
type Event struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Category      string              `bson:"category" json:"category"`
	EventType     string              `bson:"event_type" json:"eventType"`
	Success       bool                `bson:"success" json:"success"`
	UserID        *primitive.ObjectID `bson:"user_id,omitempty" json:"userId,omitempty"`
	ActorID       *primitive.ObjectID `bson:"actor_id,omitempty" json:"actorId,omitempty"`
	FamilyTreeID  *primitive.ObjectID `bson:"family_tree_id,omitempty" json:"familyTreeId,omitempty"`
	IP            string              `bson:"ip,omitempty" json:"ip,omitempty"`
	FailureReason string              `bson:"failure_reason,omitempty" json:"failureReason,omitempty"`
	Details       map[string]string   `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"createdAt"`
}

// Store persists audit events.
type Store struct {
	col *mongo.Collection
}

// New returns a Store backed by the audit_events collection.
func New(db *mongo.Database) *Store {
	return &Store{col: db.Collection("audit_events")}
}

// Insert writes one event. The caller decides whether a write failure is
// fatal; audit writes never block the request path.
func (s *Store) Insert(ctx context.Context, e Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	_, err := s.col.InsertOne(ctx, e)
	return err
}
