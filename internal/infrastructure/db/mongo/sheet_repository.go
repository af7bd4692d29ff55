package mongo

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// SheetRepository implements ports.SheetRepository. Assignment edges live
// in the sheet document, so deleting the document removes its edges in the
// same write.
type SheetRepository struct {
	col      *mongo.Collection
	accounts *mongo.Collection
}

func NewSheetRepository(db *mongo.Database) *SheetRepository {
	return &SheetRepository{
		col:      db.Collection(collectionSheets),
		accounts: db.Collection(collectionAccounts),
	}
}

type sheetDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Name       string             `bson:"name"`
	URL        string             `bson:"url"`
	AssignedTo []string           `bson:"assigned_to"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (d sheetDoc) toDomain() *domain.Sheet {
	assigned := slices.Clone(d.AssignedTo)
	if assigned == nil {
		assigned = []string{}
	}
	return &domain.Sheet{
		ID:         d.ID.Hex(),
		Name:       d.Name,
		URL:        d.URL,
		AssignedTo: assigned,
		CreatedAt:  d.CreatedAt.UTC(),
	}
}

func (r *SheetRepository) Create(ctx context.Context, sheet *domain.Sheet) (*domain.Sheet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := sheetDoc{
		ID:         primitive.NewObjectID(),
		Name:       sheet.Name,
		URL:        sheet.URL,
		AssignedTo: []string{},
		CreatedAt:  sheet.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, storeError("insert sheet", err)
	}
	return doc.toDomain(), nil
}

func (r *SheetRepository) FindByID(ctx context.Context, id string) (*domain.Sheet, error) {
	oid, err := objectID(id, domain.ErrSheetNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc sheetDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSheetNotFound
		}
		return nil, storeError("find sheet", err)
	}
	return doc.toDomain(), nil
}

func (r *SheetRepository) FindByURL(ctx context.Context, url string) ([]*domain.Sheet, error) {
	return r.find(ctx, bson.M{"url": url})
}

func (r *SheetRepository) List(ctx context.Context) ([]*domain.Sheet, error) {
	return r.find(ctx, bson.M{})
}

func (r *SheetRepository) ListAssignedTo(ctx context.Context, accountID string) ([]*domain.Sheet, error) {
	return r.find(ctx, bson.M{"assigned_to": accountID})
}

func (r *SheetRepository) find(ctx context.Context, filter bson.M) ([]*domain.Sheet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storeError("find sheets", err)
	}
	var docs []sheetDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeError("decode sheets", err)
	}

	out := make([]*domain.Sheet, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Assign adds accountID to the sheet's edge set with $addToSet, so repeated
// or concurrent calls for the same pair leave exactly one edge. The
// pre-update document tells whether this call added it.
func (r *SheetRepository) Assign(ctx context.Context, sheetID, accountID string) (*domain.Sheet, bool, error) {
	oid, err := objectID(sheetID, domain.ErrSheetNotFound)
	if err != nil {
		return nil, false, err
	}
	accOID, err := objectID(accountID, domain.ErrAccountNotFound)
	if err != nil {
		return nil, false, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.accounts.CountDocuments(ctx, bson.M{"_id": accOID}, options.Count().SetLimit(1))
	if err != nil {
		return nil, false, storeError("check account", err)
	}
	if n == 0 {
		return nil, false, domain.ErrAccountNotFound
	}

	var before sheetDoc
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$addToSet": bson.M{"assigned_to": accountID}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, domain.ErrSheetNotFound
		}
		return nil, false, storeError("assign sheet", err)
	}

	sheet := before.toDomain()
	added := sheet.Assign(accountID)
	return sheet, added, nil
}

func (r *SheetRepository) Delete(ctx context.Context, sheetID string) error {
	oid, err := objectID(sheetID, domain.ErrSheetNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storeError("delete sheet", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSheetNotFound
	}
	return nil
}
