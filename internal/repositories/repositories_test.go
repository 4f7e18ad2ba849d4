package repositories

import (
	"subsidy/internal/database"
	. "subsidy/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var repoBaseTime = time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) database.DB {
	t.Helper()

	sql, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := sql.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, sql.AutoMigrate(
		&User{}, &Request{}, &Attachment{}, &Expiration{}, &Assignment{},
	))

	return database.DB{SQL: sql}
}

func createTestRequest(t *testing.T, db database.DB, state RequestState) *Request {
	t.Helper()

	request := &Request{
		RequestType: RequestTypeBillReturn,
		State:       state,
		Active:      true,
	}
	require.NoError(t, db.SQL.Create(request).Error)

	return request
}

func createTestUser(
	t *testing.T,
	db database.DB,
	login string,
	role ReviewerRole,
	createdOffset time.Duration,
) *User {
	t.Helper()

	user := &User{
		FirstName: login,
		LastName:  "Test",
		Login:     login,
		Password:  "password",
		Role:      role,
	}
	user.CreatedAt = repoBaseTime.Add(createdOffset)
	require.NoError(t, db.SQL.Create(user).Error)

	return user
}
