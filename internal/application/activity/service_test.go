package activity

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"plotsure-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupActivityTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.ActivityLog{}))
	return &Service{DB: db}, db
}

func TestRecord_StoresDetails(t *testing.T) {
	svc, db := setupActivityTest(t)
	userID := uint(3)

	svc.Record(context.Background(), &userID, "listing.verified", "listing", 12,
		map[string]interface{}{"reference": "PSC123456789"})

	var entry domain.ActivityLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "listing.verified", entry.Action)
	assert.Equal(t, "listing", entry.Entity)
	assert.EqualValues(t, 12, entry.EntityID)
	assert.Contains(t, string(entry.Details), "PSC123456789")
}

func TestList_FiltersByActionAndUser(t *testing.T) {
	svc, _ := setupActivityTest(t)
	alice, bob := uint(1), uint(2)

	svc.Record(context.Background(), &alice, "listing.created", "listing", 1, nil)
	svc.Record(context.Background(), &alice, "listing.deleted", "listing", 1, nil)
	svc.Record(context.Background(), &bob, "listing.created", "listing", 2, nil)

	page, err := svc.List(context.Background(), Filter{Action: "listing.created"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = svc.List(context.Background(), Filter{UserID: alice})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = svc.List(context.Background(), Filter{UserID: bob, Action: "listing.deleted"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Total)
}

func TestExportCSV(t *testing.T) {
	svc, _ := setupActivityTest(t)
	userID := uint(1)
	svc.Record(context.Background(), &userID, "inquiry.assigned", "inquiry", 5,
		map[string]interface{}{"assignee_id": 2})
	svc.Record(context.Background(), nil, "contact.responded", "contact", 9, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), Filter{}, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "user_id", "action", "entity", "entity_id", "details", "created_at"}, rows[0])
	assert.Equal(t, "inquiry.assigned", rows[1][2])
	assert.Equal(t, "", rows[2][1], "anonymous rows export an empty user id")

	_, err = time.Parse(time.RFC3339, rows[1][6])
	assert.NoError(t, err)
}
