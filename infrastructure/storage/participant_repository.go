package storage

import (
	"chat-room/domain"
	"chat-room/errors"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type participantDocument struct {
	Name     string `bson:"name"`
	LastSeen int64  `bson:"lastSeen"`
}

func toParticipantDocument(p domain.Participant) participantDocument {
	return participantDocument{Name: p.Name, LastSeen: p.LastSeen.UnixMilli()}
}

func (d participantDocument) toParticipant() domain.Participant {
	return domain.Participant{Name: d.Name, LastSeen: time.UnixMilli(d.LastSeen).UTC()}
}

// ParticipantRepository stores participants in MongoDB.
// Last-seen times are kept as Unix milliseconds.
type ParticipantRepository struct {
	collection *mongo.Collection
	log        *slog.Logger
}

func NewParticipantRepository(db *mongo.Database, log *slog.Logger) *ParticipantRepository {
	return &ParticipantRepository{collection: db.Collection(participantsCollection), log: log}
}

func (r *ParticipantRepository) Insert(ctx context.Context, p domain.Participant) error {
	_, err := r.collection.InsertOne(ctx, toParticipantDocument(p))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: participant %q", errors.ErrConflict, p.Name)
	}
	return err
}

func (r *ParticipantRepository) List(ctx context.Context) ([]domain.Participant, error) {
	return r.find(ctx, bson.M{})
}

func (r *ParticipantRepository) ListStale(ctx context.Context, cutoff time.Time) ([]domain.Participant, error) {
	stale, err := r.find(ctx, bson.M{"lastSeen": bson.M{"$lt": cutoff.UnixMilli()}})
	if err != nil {
		return nil, err
	}
	r.log.Debug("Stale participants found", "count", len(stale), "cutoff", cutoff)
	return stale, nil
}

func (r *ParticipantRepository) Exists(ctx context.Context, name string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ParticipantRepository) Touch(ctx context.Context, name string, at time.Time) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$set": bson.M{"lastSeen": at.UnixMilli()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: participant %q", errors.ErrNotFound, name)
	}
	return nil
}

// DeleteStale is a single conditional delete, so a heartbeat landing after the
// stale scan keeps the participant.
func (r *ParticipantRepository) DeleteStale(ctx context.Context, name string, cutoff time.Time) (bool, error) {
	return r.deleteOne(ctx, bson.M{"name": name, "lastSeen": bson.M{"$lt": cutoff.UnixMilli()}})
}

func (r *ParticipantRepository) Delete(ctx context.Context, name string) (bool, error) {
	return r.deleteOne(ctx, bson.M{"name": name})
}

func (r *ParticipantRepository) deleteOne(ctx context.Context, filter bson.M) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

func (r *ParticipantRepository) find(ctx context.Context, filter bson.M) ([]domain.Participant, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var documents []participantDocument
	if err = cursor.All(ctx, &documents); err != nil {
		return nil, err
	}
	return lo.Map(documents, func(d participantDocument, _ int) domain.Participant {
		return d.toParticipant()
	}), nil
}
