package mongo

// Интеграционные тесты обновления рейтинга (mongo:7.0 через testcontainers-go).
//
//   GO_TEST_INTEGRATION=1 go test ./rating-service/internal/storage/mongo -v -count=1

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/rating-service/internal/storage"
)

func TestIDFilter(t *testing.T) {
	oid := primitive.NewObjectID()

	f := idFilter(oid.Hex())
	require.Equal(t, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{oid, oid.Hex()}}}}}, f)

	require.Equal(t, bson.D{{Key: "_id", Value: "dish-42"}}, idFilter("dish-42"))
}

func TestDatabaseFromURI(t *testing.T) {
	require.Equal(t, "ratings", databaseFromURI("mongodb://localhost:27017/ratings"))
	require.Equal(t, defaultDBName, databaseFromURI("mongodb://localhost:27017"))
}

func newTestMongo(t *testing.T) *Mongo {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7.0",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mongoC.Terminate(context.Background()) })

	endpoint, err := mongoC.PortEndpoint(ctx, "27017/tcp", "mongodb")
	require.NoError(t, err)

	m, err := New(ctx, endpoint+"/rating_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.db.Drop(context.Background())
		_ = m.Close(context.Background())
	})

	return m
}

func TestSetRating(t *testing.T) {
	m := newTestMongo(t)
	ctx := context.Background()

	oid := primitive.NewObjectID()
	_, err := m.db.Collection("restaurants").InsertOne(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "name", Value: "Pho"}})
	require.NoError(t, err)
	_, err = m.db.Collection("dishes").InsertOne(ctx, bson.D{{Key: "_id", Value: "dish-1"}})
	require.NoError(t, err)

	require.NoError(t, m.SetRating(ctx, contracts.RatingRestaurant, oid.Hex(), 4.5))
	require.NoError(t, m.SetRating(ctx, contracts.RatingDish, "dish-1", 3.25))

	var doc struct {
		Name   string  `bson:"name"`
		Rating float64 `bson:"rating"`
	}
	require.NoError(t, m.db.Collection("restaurants").FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc))
	require.Equal(t, 4.5, doc.Rating)
	require.Equal(t, "Pho", doc.Name)

	require.ErrorIs(t, m.SetRating(ctx, contracts.RatingDeliveryAgent, "missing", 1), storage.ErrNotFound)
	require.ErrorIs(t, m.SetRating(ctx, "spaceship", "x", 1), errUnknownEntity)
}
