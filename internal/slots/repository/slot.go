package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	slotserrors "medibites/internal/slots/errors"
	"medibites/pkg/config"
	mongotx "medibites/pkg/db/mongo"
	"medibites/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "timeSlots"
)

type SlotRepository interface {
	IsAvailable(ctx context.Context, key model.SlotKey) (bool, error)
	// Reserve flips isBooked from false to true in a single conditional write.
	// It returns ErrSlotUnavailable when no free slot matches key.
	Reserve(ctx context.Context, key model.SlotKey, appointmentID string) (*model.TimeSlot, error)
	FindByDoctorAndDate(ctx context.Context, doctorID, date string, onlyFree bool) ([]*model.TimeSlot, error)
}

type mongoSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func slotFilter(key model.SlotKey) bson.M {
	return bson.M{
		"doctorId":  key.DoctorID,
		"date":      key.Date,
		"startTime": key.StartTime,
	}
}

func (r *mongoSlotRepository) IsAvailable(ctx context.Context, key model.SlotKey) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := slotFilter(key)
	filter["isBooked"] = false

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check slot availability: %w", err)
	}
	return count > 0, nil
}

func (r *mongoSlotRepository) Reserve(ctx context.Context, key model.SlotKey, appointmentID string) (*model.TimeSlot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := slotFilter(key)
	filter["isBooked"] = false

	update := bson.M{
		"$set": bson.M{
			"isBooked":      true,
			"appointmentId": appointmentID,
			"bookedAt":      time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var slot model.TimeSlot
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, slotserrors.ErrSlotUnavailable
		}
		return nil, fmt.Errorf("failed to reserve slot: %w", err)
	}

	return &slot, nil
}

func (r *mongoSlotRepository) FindByDoctorAndDate(ctx context.Context, doctorID, date string, onlyFree bool) ([]*model.TimeSlot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"doctorId": doctorID, "date": date}
	if onlyFree {
		filter["isBooked"] = false
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.TimeSlot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}
	return slots, nil
}
