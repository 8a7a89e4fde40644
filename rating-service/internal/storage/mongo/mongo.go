package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/rating-service/internal/storage"
)

const defaultDBName = "food"

// collections - коллекция документов каждой сущности.
var collections = map[contracts.RatingEntity]string{
	contracts.RatingRestaurant:    "restaurants",
	contracts.RatingDeliveryAgent: "delivery_agents",
	contracts.RatingDish:          "dishes",
}

// errUnknownEntity - сущности нет в collections.
var errUnknownEntity = errors.New("unknown rating entity")

// Mongo - адаптер коллекций сущностей с рейтингом.
type Mongo struct {
	client *mongodriver.Client
	db     *mongodriver.Database
}

// New подключается к MongoDB и проверяет соединение.
// Коллекции принадлежат сервисам сущностей, индексы здесь не создаются.
func New(ctx context.Context, uri string) (*Mongo, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: empty db url")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Mongo{client: cli, db: cli.Database(databaseFromURI(uri))}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// idFilter ищет документ и по ObjectID, и по строковому _id:
// сервисы сущностей хранят идентификаторы по-разному.
func idFilter(id string) bson.D {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{oid, id}}}}}
	}

	return bson.D{{Key: "_id", Value: id}}
}

// SetRating выполняет $set rating по _id. Нет документа - storage.ErrNotFound.
func (m *Mongo) SetRating(ctx context.Context, entity contracts.RatingEntity, id string, rating float64) error {
	const op = "storage/mongo/SetRating"

	name, ok := collections[entity]
	if !ok {
		return fmt.Errorf("%s: %w: %q", op, errUnknownEntity, entity)
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "rating", Value: rating},
		{Key: "rating_updated_at", Value: time.Now().UTC().Truncate(time.Millisecond)},
	}}}

	res, err := m.db.Collection(name).UpdateOne(ctx, idFilter(id), update)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}

	return defaultDBName
}
