package audit

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookoutlet/internal/database"
	auditRepo "github.com/mrlokans/bookoutlet/internal/database/audit"
	"github.com/mrlokans/bookoutlet/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := database.NewSQLiteDatabase(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewService(auditRepo.NewRepository(db.DB)), db.DB
}

func TestService_LogActions(t *testing.T) {
	svc, _ := setupTestService(t)
	admin := &entities.User{ID: 3, Username: "admin"}

	svc.LogAddition(admin, entities.ObjectTypeBook, 1, "Dune (5)")
	svc.LogChange(admin, entities.ObjectTypeBook, 1, "Dune (4)", "Changed rating.")
	svc.LogDeletion(nil, entities.ObjectTypeBook, 1, "Dune (4)")

	history, err := svc.History(entities.ObjectTypeBook, 1)
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.True(t, history[0].IsAddition())
	assert.Equal(t, "admin", history[0].Username)
	assert.Equal(t, uint(3), history[0].UserID)

	assert.True(t, history[1].IsChange())
	assert.Equal(t, "Changed rating.", history[1].ChangeMessage)

	assert.True(t, history[2].IsDeletion())
	assert.Empty(t, history[2].Username)
}

func TestService_Recent(t *testing.T) {
	svc, _ := setupTestService(t)

	for i := 1; i <= 12; i++ {
		svc.LogAddition(nil, entities.ObjectTypeCountry, uint(i), "Country")
	}

	entries, err := svc.Recent(RecentLimit)
	require.NoError(t, err)
	assert.Len(t, entries, RecentLimit)
}

func TestService_LongReprIsTruncated(t *testing.T) {
	svc, _ := setupTestService(t)

	svc.LogAddition(nil, entities.ObjectTypeAddress, 1, strings.Repeat("x", 500))

	history, err := svc.History(entities.ObjectTypeAddress, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Len(t, history[0].ObjectRepr, maxReprLength)
	assert.True(t, strings.HasSuffix(history[0].ObjectRepr, "..."))
}

func TestService_Prune(t *testing.T) {
	svc, db := setupTestService(t)

	require.NoError(t, svc.Log(&entities.AdminLogEntry{
		Action: entities.AdminActionAddition, ObjectType: entities.ObjectTypeBook, ObjectID: 1,
		CreatedAt: time.Now().AddDate(0, 0, -100),
	}))
	svc.LogAddition(nil, entities.ObjectTypeBook, 2, "Fresh (3)")

	t.Run("disabled retention keeps everything", func(t *testing.T) {
		deleted, err := svc.Prune(0)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})

	t.Run("old entries removed", func(t *testing.T) {
		deleted, err := svc.Prune(90)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		var count int64
		require.NoError(t, db.Model(&entities.AdminLogEntry{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
