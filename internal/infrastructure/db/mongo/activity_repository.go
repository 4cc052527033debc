package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/accessdesk/project-access/internal/core/domain"
)

const (
	activityCollection = "activity_log"
	activityRetention  = 30 * 24 * time.Hour
)

// ActivityRepository persists the API call audit trail to the activity_log
// collection. Entries expire after activityRetention.
type ActivityRepository struct {
	coll *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{coll: db.Collection(activityCollection)}
}

func (r *ActivityRepository) Record(ctx context.Context, e domain.ActivityEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"method":     e.Method,
		"path":       e.Path,
		"status":     e.Status,
		"actor":      e.Actor(),
		"latency_ms": e.Latency.Milliseconds(),
		"at":         e.At.UTC(),
	}
	if e.Username != "" {
		doc["username"] = e.Username
		doc["role"] = string(e.Role)
	}
	if e.RequestID != "" {
		doc["request_id"] = e.RequestID
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// EnsureIndexes creates the retention TTL index and the per-user lookup index.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(activityRetention.Seconds())),
		},
		{Keys: bson.D{{Key: "username", Value: 1}, {Key: "at", Value: -1}}},
	})
	return err
}
