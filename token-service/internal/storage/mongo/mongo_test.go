package mongo

// Интеграционные тесты хранилища сессий:
// - поднимает MongoDB через testcontainers-go (mongo:7.0);
// - проверяет создание сессии, добавление устройства без дублей,
//   параллельные входы с разных устройств, отзыв/восстановление и CAS ротации.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./token-service/internal/storage/mongo -v -race -count=1

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/token-service/internal/models"
	"github.com/pribylovaa/go-food-delivery/token-service/internal/storage"
)

// testTimeout - общий дедлайн на операции с БД в тестах.
const testTimeout = 10 * time.Second

// TestMain запускает MongoDB в контейнере один раз на весь пакет.
func TestMain(m *testing.M) {
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7.0",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo testcontainer: %v\n", err)
		os.Exit(1)
	}

	host, err := mongoC.Host(ctx)
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}

	port, err := mongoC.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get mapped port: %v\n", err)
		os.Exit(1)
	}

	_ = os.Setenv("DATABASE_URL", fmt.Sprintf("mongodb://%s:%s", host, port.Port()))

	code := m.Run()

	_ = mongoC.Terminate(context.Background())
	os.Exit(code)
}

// mustNewMongo подключается к отдельной тестовой БД и удаляет её по завершении теста.
func mustNewMongo(t *testing.T) *Mongo {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	uri := os.Getenv("DATABASE_URL") + "/tokens_test_" + uuid.NewString()
	m, err := New(ctx, uri)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = m.db.Drop(ctx)
		_ = m.Close(ctx)
	})

	return m
}

func testKey() models.SessionKey {
	return models.SessionKey{UserID: uuid.NewString(), UserType: contracts.UserTypeCustomer}
}

func upsert(t *testing.T, m *Mongo, key models.SessionKey, device, token string) *storage.UpsertResult {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	res, err := m.UpsertSession(ctx, storage.UpsertInput{Key: key, DeviceInfo: device, IPAddress: "10.0.0.1", Token: token})
	require.NoError(t, err)
	return res
}

func TestDatabaseFromURI(t *testing.T) {
	require.Equal(t, "x", databaseFromURI("mongodb://localhost:27017/x"))
	require.Equal(t, defaultDBName, databaseFromURI("mongodb://localhost:27017"))
	require.Equal(t, defaultDBName, databaseFromURI("::bad::"))
}

func TestUpsertSession_CreateThenDevices(t *testing.T) {
	m := mustNewMongo(t)
	key := testKey()

	res := upsert(t, m, key, "ua-1", "rt-1")
	require.True(t, res.Created)
	require.False(t, res.NewDevice)
	require.Equal(t, []string{"ua-1"}, res.Session.DeviceInfo)
	require.Equal(t, "rt-1", res.Session.Token)

	// Известное устройство: без дублей, токен не меняется.
	res = upsert(t, m, key, "ua-1", "rt-ignored")
	require.False(t, res.Created)
	require.False(t, res.NewDevice)
	require.Equal(t, "rt-1", res.Session.Token)

	// Новое устройство.
	res = upsert(t, m, key, "ua-2", "rt-ignored")
	require.False(t, res.Created)
	require.True(t, res.NewDevice)

	s, err := m.SessionByUser(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, []string{"ua-1", "ua-2"}, s.DeviceInfo)
	require.Equal(t, "rt-1", s.Token)
	require.False(t, s.IsRevoked)

	n, err := m.sessions.CountDocuments(context.Background(), keyFilter(key))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

// Параллельные входы с разных устройств не теряют ни одно из них.
func TestUpsertSession_ConcurrentDevices(t *testing.T) {
	m := mustNewMongo(t)
	key := testKey()

	const devices = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	created, newDevice := 0, 0

	for i := 0; i < devices; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res, err := m.UpsertSession(context.Background(), storage.UpsertInput{
				Key: key, DeviceInfo: fmt.Sprintf("ua-%d", i), Token: "rt",
			})
			if err != nil {
				t.Errorf("upsert: %v", err)
				return
			}

			mu.Lock()
			defer mu.Unlock()
			if res.Created {
				created++
			}
			if res.NewDevice {
				newDevice++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, created)
	require.Equal(t, devices-1, newDevice)

	s, err := m.SessionByUser(context.Background(), key)
	require.NoError(t, err)
	require.Len(t, s.DeviceInfo, devices)
}

func TestUpsertSession_Revoked(t *testing.T) {
	m := mustNewMongo(t)
	key := testKey()
	ctx := context.Background()

	upsert(t, m, key, "ua-1", "rt-1")
	require.NoError(t, m.SetRevoked(ctx, key, true))

	_, err := m.UpsertSession(ctx, storage.UpsertInput{Key: key, DeviceInfo: "ua-2", Token: "rt-2"})
	require.ErrorIs(t, err, storage.ErrRevoked)

	s, err := m.SessionByUser(ctx, key)
	require.NoError(t, err)
	require.True(t, s.IsRevoked)
	require.Equal(t, []string{"ua-1"}, s.DeviceInfo)

	require.NoError(t, m.SetRevoked(ctx, key, false))
	res := upsert(t, m, key, "ua-2", "rt-3")
	require.True(t, res.NewDevice)
}

func TestSetRevoked_NotFound_AndIdempotent(t *testing.T) {
	m := mustNewMongo(t)
	key := testKey()
	ctx := context.Background()

	require.ErrorIs(t, m.SetRevoked(ctx, key, true), storage.ErrNotFound)

	upsert(t, m, key, "ua-1", "rt-1")
	require.NoError(t, m.SetRevoked(ctx, key, true))
	require.NoError(t, m.SetRevoked(ctx, key, true))
	require.NoError(t, m.SetRevoked(ctx, key, false))
}

func TestRotateRefreshToken_CAS(t *testing.T) {
	m := mustNewMongo(t)
	key := testKey()
	ctx := context.Background()

	require.ErrorIs(t, m.RotateRefreshToken(ctx, key, "a", "b"), storage.ErrNotFound)

	upsert(t, m, key, "ua-1", "rt-1")
	require.NoError(t, m.RotateRefreshToken(ctx, key, "rt-1", "rt-2"))

	// Старый токен уже ротирован.
	require.ErrorIs(t, m.RotateRefreshToken(ctx, key, "rt-1", "rt-3"), storage.ErrConflict)

	s, err := m.SessionByUser(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "rt-2", s.Token)

	require.NoError(t, m.SetRevoked(ctx, key, true))
	require.ErrorIs(t, m.RotateRefreshToken(ctx, key, "rt-2", "rt-4"), storage.ErrRevoked)
}

func TestSessionByUser_NotFound(t *testing.T) {
	m := mustNewMongo(t)

	_, err := m.SessionByUser(context.Background(), testKey())
	require.ErrorIs(t, err, storage.ErrNotFound)
}
