package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bcr/rental-system/internal/core/domain"
)

const collectionRentals = "rentals"

// RentalRepository implements ports.RentalRepository using MongoDB.
// It does not enforce non-overlap itself; callers hold a VehicleLocker
// across the check and the insert.
type RentalRepository struct {
	col *mongo.Collection
}

// NewRentalRepository creates a new RentalRepository.
func NewRentalRepository(db *mongo.Database) *RentalRepository {
	return &RentalRepository{col: db.Collection(collectionRentals)}
}

type rentalDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        string             `bson:"user_id"`
	CarID         string             `bson:"car_id"`
	RentStartedAt time.Time          `bson:"rent_started_at"`
	RentEndedAt   *time.Time         `bson:"rent_ended_at"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (d rentalDoc) toDomain() *domain.RentalWindow {
	w := &domain.RentalWindow{
		ID:            d.ID.Hex(),
		UserID:        d.UserID,
		CarID:         d.CarID,
		RentStartedAt: d.RentStartedAt.UTC(),
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
	if d.RentEndedAt != nil {
		end := d.RentEndedAt.UTC()
		w.RentEndedAt = &end
	}
	return w
}

// activeFilter matches windows that have not ended, or end at/after t.
func activeFilter(t time.Time) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"rent_ended_at": nil},
		bson.M{"rent_ended_at": bson.M{"$gte": t.UTC()}},
	}}
}

// FindActiveForVehicle returns the windows of carID that block a rental
// starting at after.
func (r *RentalRepository) FindActiveForVehicle(ctx context.Context, carID string, after time.Time) ([]*domain.RentalWindow, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := activeFilter(after)
	filter["car_id"] = carID

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find active rentals: %w", err)
	}
	defer cur.Close(ctx)

	var docs []rentalDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode rentals: %w", err)
	}

	out := make([]*domain.RentalWindow, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Create persists a rental window to the rentals collection.
func (r *RentalRepository) Create(ctx context.Context, w *domain.RentalWindow) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := rentalDoc{
		UserID:        w.UserID,
		CarID:         w.CarID,
		RentStartedAt: w.RentStartedAt.UTC(),
		RentEndedAt:   w.RentEndedAt,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert rental: %w", err)
	}

	w.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

// BlockedVehicleIDs lists the distinct cars with a window active at at.
func (r *RentalRepository) BlockedVehicleIDs(ctx context.Context, at time.Time) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	values, err := r.col.Distinct(ctx, "car_id", activeFilter(at))
	if err != nil {
		return nil, fmt.Errorf("distinct rented cars: %w", err)
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
