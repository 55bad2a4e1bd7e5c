package storage

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/repositories"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type messageDocument struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	From string             `bson:"from"`
	To   string             `bson:"to"`
	Text string             `bson:"text"`
	Type string             `bson:"type"`
	Time string             `bson:"time"`
}

func toMessageDocument(m domain.Message) messageDocument {
	return messageDocument{From: m.From, To: m.To, Text: m.Text, Type: string(m.Type), Time: m.Time}
}

func (d messageDocument) toMessage() domain.Message {
	return domain.Message{
		ID:   domain.MessageID(d.ID.Hex()),
		From: d.From,
		To:   d.To,
		Text: d.Text,
		Type: domain.MessageType(d.Type),
		Time: d.Time,
	}
}

// MessageRepository stores messages in MongoDB. Identifiers are ObjectIDs: their
// leading timestamp and per-process counter give creation order when sorting on _id.
type MessageRepository struct {
	collection *mongo.Collection
	log        *slog.Logger
}

func NewMessageRepository(db *mongo.Database, log *slog.Logger) *MessageRepository {
	return &MessageRepository{collection: db.Collection(messagesCollection), log: log}
}

func parseObjectID(id domain.MessageID) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: malformed message id %q", errors.ErrNotFound, id)
	}
	return objectID, nil
}

func (r *MessageRepository) Insert(ctx context.Context, message domain.Message) (domain.MessageID, error) {
	document := toMessageDocument(message)
	document.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, document); err != nil {
		return "", err
	}
	return domain.MessageID(document.ID.Hex()), nil
}

func (r *MessageRepository) Find(ctx context.Context, id domain.MessageID) (domain.Message, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return domain.Message{}, err
	}
	var document messageDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&document)
	if goerrors.Is(err, mongo.ErrNoDocuments) {
		return domain.Message{}, fmt.Errorf("%w: message %s", errors.ErrNotFound, id)
	}
	if err != nil {
		return domain.Message{}, err
	}
	return document.toMessage(), nil
}

// List queries newest first so that the limit applies to the tail of the history,
// then restores creation order.
func (r *MessageRepository) List(ctx context.Context, filter repositories.MessageFilter) ([]domain.Message, error) {
	query := bson.M{"$or": bson.A{
		bson.M{"type": string(domain.StatusMessage)},
		bson.M{"to": bson.M{"$in": bson.A{filter.Requester, domain.Everyone}}},
		bson.M{"from": filter.Requester},
	}}
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if filter.Limit != nil {
		findOptions.SetLimit(int64(*filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var documents []messageDocument
	if err = cursor.All(ctx, &documents); err != nil {
		return nil, err
	}
	r.log.Debug("Messages fetched", "requester", filter.Requester, "count", len(documents))
	messages := lo.Map(documents, func(d messageDocument, _ int) domain.Message {
		return d.toMessage()
	})
	slices.Reverse(messages)
	return messages, nil
}

func (r *MessageRepository) Update(ctx context.Context, message domain.Message) error {
	objectID, err := parseObjectID(message.ID)
	if err != nil {
		return err
	}
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"from": message.From,
			"to":   message.To,
			"text": message.Text,
			"type": string(message.Type),
			"time": message.Time,
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: message %s", errors.ErrNotFound, message.ID)
	}
	return nil
}

func (r *MessageRepository) Delete(ctx context.Context, id domain.MessageID) error {
	objectID, err := parseObjectID(id)
	if err != nil {
		return err
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: message %s", errors.ErrNotFound, id)
	}
	return nil
}
