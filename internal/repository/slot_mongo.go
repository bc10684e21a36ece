package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	errs "gamesave/internal/errors"
)

type slotDocument struct {
	Slot      string    `bson:"slot"`
	Data      []byte    `bson:"data"`
	Size      int64     `bson:"size"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoSlotStore keeps each save as a document keyed by slot name.
type MongoSlotStore struct {
	collection *mongo.Collection
	log        *zap.SugaredLogger
}

func NewMongoSlotStore(db *mongo.Database, collection string, log *zap.SugaredLogger) *MongoSlotStore {
	return &MongoSlotStore{collection: db.Collection(collection), log: log}
}

func (s *MongoSlotStore) Open(ctx context.Context, slot string) (io.ReadSeekCloser, error) {
	if err := checkSlotName(slot); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc slotDocument
	err := s.collection.FindOne(ctx, bson.M{"slot": slot}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("slot %q: %w", slot, errs.ErrSlotNotFound)
	}
	if err != nil {
		s.log.Errorw("Failed to read save slot", "slot", slot, zap.Error(err))
		return nil, err
	}
	return newMemSlot(doc.Data), nil
}

func (s *MongoSlotStore) Write(ctx context.Context, slot string, data []byte) error {
	if err := checkSlotName(slot); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": slotDocument{
			Slot:      slot,
			Data:      data,
			Size:      int64(len(data)),
			UpdatedAt: time.Now().UTC(),
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.collection.UpdateOne(ctx, bson.M{"slot": slot}, update, opts); err != nil {
		s.log.Errorw("Failed to write save slot", "slot", slot, zap.Error(err))
		return err
	}
	return nil
}

func (s *MongoSlotStore) List(ctx context.Context) ([]SlotInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"slot": 1, "size": 1}).
		SetSort(bson.M{"slot": 1})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []SlotInfo
	for cursor.Next(ctx) {
		var info SlotInfo
		if err := cursor.Decode(&info); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, cursor.Err()
}

func (s *MongoSlotStore) Delete(ctx context.Context, slot string) error {
	if err := checkSlotName(slot); err != nil {
		return err
	}
	res, err := s.collection.DeleteOne(ctx, bson.M{"slot": slot})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("slot %q: %w", slot, errs.ErrSlotNotFound)
	}
	return nil
}
