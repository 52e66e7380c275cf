package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const collectionInterviews = "interviews"

// InterviewRepo stores interviews in the layout of the original web app:
// one top-level collection, camelCase fields, server-assigned createdAt.
type InterviewRepo struct {
	db *firestore.Client
}

func NewInterviewRepo(db *firestore.Client) *InterviewRepo {
	return &InterviewRepo{db: db}
}

func (r *InterviewRepo) Append(ctx context.Context, rec *models.Interview) (string, error) {
	ref, _, err := r.db.Collection(collectionInterviews).Add(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("add interview: %w", err)
	}
	rec.ID = ref.ID
	return ref.ID, nil
}

func (r *InterviewRepo) ListByUser(ctx context.Context, userID string) ([]models.Interview, error) {
	iter := r.db.Collection(collectionInterviews).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	out := []models.Interview{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query interviews: %w", err)
		}

		var rec models.Interview
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("decode interview %s: %w", doc.Ref.ID, err)
		}
		rec.ID = doc.Ref.ID
		out = append(out, rec)
	}
	return out, nil
}

func (r *InterviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	doc, err := r.db.Collection(collectionInterviews).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get interview: %w", err)
	}

	var rec models.Interview
	if err := doc.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("decode interview %s: %w", id, err)
	}
	rec.ID = doc.Ref.ID
	return &rec, nil
}
