package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bcr/rental-system/internal/core/domain"
	"github.com/bcr/rental-system/internal/core/ports"
)

const collectionCars = "cars"

type CarRepository struct {
	col *mongo.Collection
}

func NewCarRepository(db *mongo.Database) *CarRepository {
	return &CarRepository{col: db.Collection(collectionCars)}
}

type carDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Name              string             `bson:"name"`
	Price             float64            `bson:"price"`
	Size              string             `bson:"size"`
	Image             string             `bson:"image,omitempty"`
	IsCurrentlyRented bool               `bson:"is_currently_rented"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

func (d carDoc) toDomain() *domain.Car {
	return &domain.Car{
		ID:                d.ID.Hex(),
		Name:              d.Name,
		Price:             d.Price,
		Size:              domain.CarSize(d.Size),
		Image:             d.Image,
		IsCurrentlyRented: d.IsCurrentlyRented,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

// Create inserts a new car document.
func (r *CarRepository) Create(ctx context.Context, car *domain.Car) (*domain.Car, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := carDoc{
		Name:              car.Name,
		Price:             car.Price,
		Size:              string(car.Size),
		Image:             car.Image,
		IsCurrentlyRented: car.IsCurrentlyRented,
		CreatedAt:         car.CreatedAt,
		UpdatedAt:         car.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert car: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// FindByID retrieves a car by its hex ID.
func (r *CarRepository) FindByID(ctx context.Context, id string) (*domain.Car, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc carDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find car: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns one page of cars, oldest first, and the total match count.
func (r *CarRepository) List(ctx context.Context, f ports.ListCarsFilter) ([]*domain.Car, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Size != "" {
		filter["size"] = string(f.Size)
	}
	if len(f.ExcludeIDs) > 0 {
		excluded := make([]primitive.ObjectID, 0, len(f.ExcludeIDs))
		for _, id := range f.ExcludeIDs {
			if oid, err := primitive.ObjectIDFromHex(id); err == nil {
				excluded = append(excluded, oid)
			}
		}
		filter["_id"] = bson.M{"$nin": excluded}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count cars: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find cars: %w", err)
	}
	defer cur.Close(ctx)

	var docs []carDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode cars: %w", err)
	}

	cars := make([]*domain.Car, 0, len(docs))
	for _, d := range docs {
		cars = append(cars, d.toDomain())
	}
	return cars, total, nil
}

// Update replaces the mutable attributes of a car and returns the result.
func (r *CarRepository) Update(ctx context.Context, id string, u ports.CarUpdate) (*domain.Car, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":                u.Name,
		"price":               u.Price,
		"size":                string(u.Size),
		"image":               u.Image,
		"is_currently_rented": u.IsCurrentlyRented,
		"updated_at":          time.Now().UTC(),
	}}

	var doc carDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update car: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CarRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
