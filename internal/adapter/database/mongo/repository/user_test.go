package repository_test

import (
	"context"
	"os"
	"testing"

	"usersapi/internal/adapter/database/mongo"
	"usersapi/internal/adapter/database/mongo/repository"
	"usersapi/internal/core/port"
	"usersapi/pkg/config"
	. "usersapi/pkg/test"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func TestMongoUserRepository(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run docker-backed tests")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections"),
		},
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		container.Terminate(ctx)
	})

	endpoint, err := container.PortEndpoint(ctx, "27017", "mongodb")
	require.NoError(t, err)

	db, err := mongo.NewDB(ctx, config.DatabaseConfig{
		Driver:   config.DriverMongo,
		MongoURI: endpoint,
		Name:     "users_api_test",
	}, zap.NewNop())
	require.NoError(t, err)

	t.Cleanup(func() { db.Close(ctx) })

	suite.Run(t, &UserRepositorySuite{
		NewRepo: func() port.UserRepository {
			require.NoError(t, db.Users().Drop(ctx))
			require.NoError(t, db.Counters().Drop(ctx))
			require.NoError(t, db.EnsureIndexes(ctx))

			return repository.NewUserRepository(db)
		},
	})
}
