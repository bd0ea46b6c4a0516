package repository

import (
	"context"
	"math"

	"github.com/arzan03/FilesManager/internal/db"
	"github.com/arzan03/FilesManager/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListFilter selects one page of records sharing a parent. An empty UserID
// lists records of every owner.
type ListFilter struct {
	ParentID models.ParentID
	UserID   string
	Page     int
	PageSize int
}

// Skip returns how many records precede the page. ok is false when the page
// starts past any addressable offset, which can only be an empty page.
func (f ListFilter) Skip() (skip int64, ok bool) {
	if f.Page <= 0 || f.PageSize <= 0 {
		return 0, true
	}
	if f.Page > (math.MaxInt-f.PageSize)/f.PageSize {
		return 0, false
	}
	return int64(f.Page * f.PageSize), true
}

type FileRepository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id string) (*models.File, error)
	GetByIDAndOwner(ctx context.Context, id, userID string) (*models.File, error)
	List(ctx context.Context, filter ListFilter) ([]models.File, error)
	SetPublic(ctx context.Context, id, userID string, value bool) (*models.File, error)
	Count(ctx context.Context) (int64, error)
}

type MongoFileRepository struct {
	coll *mongo.Collection
}

func NewFileRepository(database *mongo.Database) *MongoFileRepository {
	return &MongoFileRepository{coll: database.Collection(db.FilesCollection)}
}

func (r *MongoFileRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	if file.ParentID.IsRoot() {
		file.ParentID = models.RootParentID
	}
	if _, err := r.coll.InsertOne(ctx, file); err != nil {
		return nil, translate(err)
	}
	return file, nil
}

func (r *MongoFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoFileRepository) GetByIDAndOwner(ctx context.Context, id, userID string) (*models.File, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid, "userId": userID})
}

func (r *MongoFileRepository) findOne(ctx context.Context, filter bson.M) (*models.File, error) {
	var file models.File
	if err := r.coll.FindOne(ctx, filter).Decode(&file); err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

// List returns records in insertion order.
func (r *MongoFileRepository) List(ctx context.Context, filter ListFilter) ([]models.File, error) {
	parent := filter.ParentID
	if parent.IsRoot() {
		parent = models.RootParentID
	}
	query := bson.M{"parentId": parent}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}

	skip, ok := filter.Skip()
	if !ok {
		return []models.File{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(int64(filter.PageSize))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	files := make([]models.File, 0, filter.PageSize)
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (r *MongoFileRepository) SetPublic(ctx context.Context, id, userID string, value bool) (*models.File, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var file models.File
	err = r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid, "userId": userID},
		bson.M{"$set": bson.M{"isPublic": value}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&file)
	if err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

func (r *MongoFileRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
