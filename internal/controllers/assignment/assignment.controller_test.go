package assignmentController

import (
	"context"
	"subsidy/internal/database"
	. "subsidy/internal/models"
	"subsidy/internal/repositories"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var baseTime = time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) database.DB {
	t.Helper()

	sql, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := sql.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, sql.AutoMigrate(
		&User{}, &Request{}, &Attachment{}, &Expiration{}, &Assignment{},
	))

	return database.DB{SQL: sql}
}

func newTestController(t *testing.T) (*AssignmentController, database.DB) {
	t.Helper()

	db := setupTestDB(t)
	controller := New(
		repositories.NewAssignment(db),
		repositories.NewUser(db),
		nil,
	)

	return controller, db
}

// createUser inserts a user with a deterministic creation time so the
// creation-order tie-breaks are stable under test.
func createUser(t *testing.T, db database.DB, login string, role ReviewerRole, createdOffset time.Duration) *User {
	t.Helper()

	user := &User{
		FirstName: login,
		LastName:  "Test",
		Login:     login,
		Password:  "password",
		Role:      role,
	}
	user.CreatedAt = baseTime.Add(createdOffset)
	require.NoError(t, db.SQL.Create(user).Error)

	return user
}

func createAssignment(t *testing.T, db database.DB, userID string, role ReviewerRole) {
	t.Helper()

	assignment := &Assignment{
		UserID:    userID,
		RequestID: uuid.New().String(),
		Role:      role,
	}
	require.NoError(t, db.SQL.Create(assignment).Error)
}

func getAssignments(t *testing.T, db database.DB, requestID string) []*Assignment {
	t.Helper()

	var assignments []*Assignment
	require.NoError(t, db.SQL.Where("request_id = ?", requestID).Find(&assignments).Error)
	return assignments
}

func TestAssignReviewers_OnePerRole(t *testing.T) {
	controller, db := newTestController(t)

	fidu := createUser(t, db, "fidu1", RoleFidu, 0)
	agent := createUser(t, db, "agent1", RoleAgent, time.Minute)
	validator := createUser(t, db, "validator1", RoleValidator, 2*time.Minute)

	requestID := uuid.New().String()
	err := controller.AssignReviewers(context.Background(), requestID)
	require.NoError(t, err)

	assignments := getAssignments(t, db, requestID)
	require.Len(t, assignments, 3)

	byRole := make(map[ReviewerRole]string)
	for _, assignment := range assignments {
		byRole[assignment.Role] = assignment.UserID
	}
	assert.Equal(t, fidu.ID, byRole[RoleFidu])
	assert.Equal(t, agent.ID, byRole[RoleAgent])
	assert.Equal(t, validator.ID, byRole[RoleValidator])
}

func TestAssignReviewers_MissingRoleFailsAlone(t *testing.T) {
	controller, db := newTestController(t)

	createUser(t, db, "fidu1", RoleFidu, 0)
	createUser(t, db, "agent1", RoleAgent, time.Minute)
	// No validator exists at all.

	requestID := uuid.New().String()
	err := controller.AssignReviewers(context.Background(), requestID)

	var assignmentErr *UserAssignmentError
	require.ErrorAs(t, err, &assignmentErr)
	assert.Equal(t, RoleValidator, assignmentErr.Role)

	assignments := getAssignments(t, db, requestID)
	assert.Len(t, assignments, 2, "sibling roles must still be assigned")
}

func TestAssignReviewers_PrefersUserWithoutAssignments(t *testing.T) {
	controller, db := newTestController(t)

	older := createUser(t, db, "fidu-older", RoleFidu, 0)
	newer := createUser(t, db, "fidu-newer", RoleFidu, time.Hour)
	createUser(t, db, "agent1", RoleAgent, time.Minute)
	createUser(t, db, "validator1", RoleValidator, 2*time.Minute)

	// The older fidu already holds an assignment, so the fresh one wins.
	createAssignment(t, db, older.ID, RoleFidu)

	requestID := uuid.New().String()
	require.NoError(t, controller.AssignReviewers(context.Background(), requestID))

	for _, assignment := range getAssignments(t, db, requestID) {
		if assignment.Role == RoleFidu {
			assert.Equal(t, newer.ID, assignment.UserID)
		}
	}
}

func TestAssignReviewers_PrefersMostRecentlyCreatedFreshUser(t *testing.T) {
	controller, db := newTestController(t)

	createUser(t, db, "fidu-older", RoleFidu, 0)
	newest := createUser(t, db, "fidu-newest", RoleFidu, 2*time.Hour)
	createUser(t, db, "agent1", RoleAgent, time.Minute)
	createUser(t, db, "validator1", RoleValidator, 2*time.Minute)

	requestID := uuid.New().String()
	require.NoError(t, controller.AssignReviewers(context.Background(), requestID))

	for _, assignment := range getAssignments(t, db, requestID) {
		if assignment.Role == RoleFidu {
			assert.Equal(t, newest.ID, assignment.UserID,
				"ties between fresh users break toward the most recently created")
		}
	}
}

func TestAssignReviewers_FallsBackToLeastLoaded(t *testing.T) {
	controller, db := newTestController(t)

	heavy := createUser(t, db, "fidu-heavy", RoleFidu, 0)
	light := createUser(t, db, "fidu-light", RoleFidu, time.Hour)
	createUser(t, db, "agent1", RoleAgent, time.Minute)
	createUser(t, db, "validator1", RoleValidator, 2*time.Minute)

	// Every fidu is busy; the one with fewer assignments must win.
	createAssignment(t, db, heavy.ID, RoleFidu)
	createAssignment(t, db, heavy.ID, RoleFidu)
	createAssignment(t, db, light.ID, RoleFidu)

	requestID := uuid.New().String()
	require.NoError(t, controller.AssignReviewers(context.Background(), requestID))

	for _, assignment := range getAssignments(t, db, requestID) {
		if assignment.Role == RoleFidu {
			assert.Equal(t, light.ID, assignment.UserID)
		}
	}
}

func TestAssignReviewers_BusySetIsGlobalAcrossRoles(t *testing.T) {
	controller, db := newTestController(t)

	crossBusy := createUser(t, db, "fidu-crossbusy", RoleFidu, time.Hour)
	fresh := createUser(t, db, "fidu-fresh", RoleFidu, 0)
	createUser(t, db, "agent1", RoleAgent, time.Minute)
	createUser(t, db, "validator1", RoleValidator, 2*time.Minute)

	// An assignment held under any role counts toward the busy set.
	createAssignment(t, db, crossBusy.ID, RoleAgent)

	requestID := uuid.New().String()
	require.NoError(t, controller.AssignReviewers(context.Background(), requestID))

	for _, assignment := range getAssignments(t, db, requestID) {
		if assignment.Role == RoleFidu {
			assert.Equal(t, fresh.ID, assignment.UserID,
				"a user busy in another role is not fresh for this role")
		}
	}
}

func TestAssignReviewers_NoUsersAtAll(t *testing.T) {
	controller, db := newTestController(t)

	requestID := uuid.New().String()
	err := controller.AssignReviewers(context.Background(), requestID)

	require.Error(t, err)
	assert.Empty(t, getAssignments(t, db, requestID))
}

func TestListByRequest(t *testing.T) {
	controller, db := newTestController(t)

	user := createUser(t, db, "fidu1", RoleFidu, 0)
	requestID := uuid.New().String()
	createAssignmentFor := &Assignment{
		UserID:    user.ID,
		RequestID: requestID,
		Role:      RoleFidu,
	}
	require.NoError(t, db.SQL.Create(createAssignmentFor).Error)

	assignments, err := controller.ListByRequest(context.Background(), requestID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, user.ID, assignments[0].UserID)
}
