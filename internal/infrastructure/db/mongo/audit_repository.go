package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// AuditRepository persists audit entries to the audit_events collection.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAudit)}
}

func (r *AuditRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"operation":  entry.Operation,
		"actor_id":   entry.ActorID,
		"actor_role": string(entry.ActorRole),
		"target_id":  entry.TargetID,
		"at":         entry.At.UTC(),
	}
	if entry.Detail != "" {
		doc["detail"] = entry.Detail
	}

	_, err := r.col.InsertOne(ctx, doc)
	return storeError("insert audit entry", err)
}
