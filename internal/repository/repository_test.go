package repository_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"todopro/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	return db
}

func createUser(t *testing.T, db *gorm.DB, account string, departmentID *uint) *model.User {
	t.Helper()

	user := &model.User{
		Account:      account,
		PasswordHash: "irrelevant",
		Name:         account,
		DepartmentID: departmentID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createDepartment(t *testing.T, db *gorm.DB, name string) *model.Department {
	t.Helper()

	department := &model.Department{Name: name}
	require.NoError(t, db.Create(department).Error)
	return department
}

func count[T any](t *testing.T, db *gorm.DB, query string, args ...interface{}) int64 {
	t.Helper()

	var n int64
	var zero T
	tx := db.Model(&zero)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	require.NoError(t, tx.Count(&n).Error)
	return n
}

func testCtx() context.Context {
	return context.Background()
}
