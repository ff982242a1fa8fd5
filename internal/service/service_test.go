package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"todopro/internal/dto"
	"todopro/internal/model"
	"todopro/internal/repository"
	"todopro/internal/service"
	"todopro/pkg/token"
)

// testEnv wires every domain operation against one in-memory database, the
// way cmd/server does against the real one.
type testEnv struct {
	db          *gorm.DB
	issuer      *token.Issuer
	auth        service.AuthService
	departments service.DepartmentService
	todos       service.TodoService
	groups      service.GroupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	issuer := token.NewIssuer("test-secret", "todopro", "todopro-web", time.Hour)

	return &testEnv{
		db:          db,
		issuer:      issuer,
		auth:        service.NewAuthService(userRepo, departmentRepo, issuer),
		departments: service.NewDepartmentService(departmentRepo, userRepo),
		todos:       service.NewTodoService(todoRepo, userRepo),
		groups:      service.NewGroupService(groupRepo, nil, 0),
	}
}

// register creates a user through the real operation and returns its
// identity for use as an actor.
func (e *testEnv) register(t *testing.T, account, password string, supervisor bool) token.Identity {
	t.Helper()

	user, err := e.auth.Register(context.Background(), dto.RegisterRequest{
		Account:    account,
		Password:   password,
		Name:       account,
		Supervisor: supervisor,
	})
	require.NoError(t, err)

	return token.Identity{
		UserID:     user.ID,
		Account:    user.Account,
		Name:       user.Name,
		Supervisor: user.Supervisor,
	}
}

func testCtx() context.Context {
	return context.Background()
}
