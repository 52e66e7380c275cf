package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionInterviews = "interviews"

type InterviewRepository interface {
	Append(ctx context.Context, rec *models.Interview) (string, error)
	ListByUser(ctx context.Context, userID string) ([]models.Interview, error)
	GetByID(ctx context.Context, id string) (*models.Interview, error)
}

type interviewRepo struct {
	col *mongo.Collection
	now func() time.Time
}

func NewInterviewRepo(db *mongo.Database) InterviewRepository {
	return &interviewRepo{
		col: db.Collection(CollectionInterviews),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Append inserts a new interview; the id and created_at are assigned here.
func (r *interviewRepo) Append(ctx context.Context, rec *models.Interview) (string, error) {
	doc := *rec
	doc.ID = primitive.NewObjectID().Hex()
	doc.CreatedAt = r.now()

	if _, err := r.col.InsertOne(ctx, &doc); err != nil {
		return "", err
	}
	rec.ID = doc.ID
	rec.CreatedAt = doc.CreatedAt
	return doc.ID, nil
}

func (r *interviewRepo) ListByUser(ctx context.Context, userID string) ([]models.Interview, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Interview{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *interviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	var rec models.Interview
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
