package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func setupUserDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&User{}))
	return db
}

func TestUserBeforeSave_HashesPassword(t *testing.T) {
	db := setupUserDB(t)

	user := User{
		FirstName: "Maite",
		LastName:  "Etxeberria",
		Login:     "maite",
		Password:  "plaintext-secret",
		Role:      RoleFidu,
	}
	require.NoError(t, db.Create(&user).Error)

	assert.NotEqual(t, "plaintext-secret", user.Password)
	assert.True(t, isBcryptHash(user.Password))
	assert.True(t, user.CheckPassword("plaintext-secret"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestUserBeforeSave_DoesNotRehash(t *testing.T) {
	db := setupUserDB(t)

	user := User{
		FirstName: "Jon",
		LastName:  "Agirre",
		Login:     "jon",
		Password:  "plaintext-secret",
		Role:      RoleAgent,
	}
	require.NoError(t, db.Create(&user).Error)
	hashed := user.Password

	user.DisplayName = "Jon A."
	require.NoError(t, db.Save(&user).Error)

	assert.Equal(t, hashed, user.Password)
}

func TestUserBeforeSave_AssignsUUID(t *testing.T) {
	db := setupUserDB(t)

	user := User{FirstName: "Ane", LastName: "Urrutia", Login: "ane", Password: "pw", Role: RoleValidator}
	require.NoError(t, db.Create(&user).Error)

	assert.NotEmpty(t, user.ID)
}
