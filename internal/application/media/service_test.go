package media

import (
	"context"
	"testing"

	"plotsure-backend/internal/application/accesspolicy"
	"plotsure-backend/internal/domain"
	"plotsure-backend/internal/infrastructure/storage"
	"plotsure-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMediaTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Listing{}, &domain.Document{}, &domain.Media{},
	))
	return &Service{DB: db, Store: storage.NewDiskStore(t.TempDir())}, db
}

func seedBrokerWithListing(t *testing.T, db *gorm.DB) (*domain.User, *domain.Listing) {
	broker := &domain.User{Name: "Broker", Email: "broker@plotsure.rw", PasswordHash: "x", Role: domain.RoleBroker, IsActive: true}
	require.NoError(t, db.Create(broker).Error)
	listing := &domain.Listing{
		Title:             "Plot in Nyamata",
		Description:       "A well located plot close to the main road in Nyamata town.",
		District:          "Bugesera",
		Sector:            "Nyamata",
		Cell:              "Kanazi",
		Village:           "Kigali",
		PriceAmount:       5_000_000,
		LandSizeValue:     600,
		LandType:          domain.LandResidential,
		LandownerName:     "Owner",
		LandownerPhone:    "+250788000000",
		LandownerIDNumber: "119900001111",
		BrokerID:          broker.ID,
		Status:            domain.ListingActive,
		ListingReference:  "PSC123456789",
	}
	require.NoError(t, db.Create(listing).Error)
	return broker, listing
}

func seedMedia(t *testing.T, db *gorm.DB, listingID uint, mediaType string, primary bool) *domain.Media {
	m := &domain.Media{
		ListingID: listingID, MediaType: mediaType, IsPrimary: primary,
		FileName: "f.jpg", FilePath: "uploads/images/f.jpg", FileSize: 10, FileType: "image/jpeg",
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func TestSetPrimary_ClearsSiblingOfSameType(t *testing.T) {
	svc, db := setupMediaTest(t)
	broker, listing := seedBrokerWithListing(t, db)
	req := accesspolicy.Requester{UserID: broker.ID, Role: broker.Role}

	old := seedMedia(t, db, listing.ID, domain.MediaImage, true)
	next := seedMedia(t, db, listing.ID, domain.MediaImage, false)
	video := seedMedia(t, db, listing.ID, domain.MediaVideo, true)

	_, err := svc.SetPrimary(context.Background(), req, next.ID)
	require.NoError(t, err)

	var images []domain.Media
	require.NoError(t, db.Where("listing_id = ? AND media_type = ? AND is_primary = ?",
		listing.ID, domain.MediaImage, true).Find(&images).Error)
	require.Len(t, images, 1)
	assert.Equal(t, next.ID, images[0].ID)

	var oldReloaded domain.Media
	require.NoError(t, db.First(&oldReloaded, old.ID).Error)
	assert.False(t, oldReloaded.IsPrimary)

	// The primary video is untouched.
	var videoReloaded domain.Media
	require.NoError(t, db.First(&videoReloaded, video.ID).Error)
	assert.True(t, videoReloaded.IsPrimary)
}

func TestSetPrimary_OwnershipEnforced(t *testing.T) {
	svc, db := setupMediaTest(t)
	_, listing := seedBrokerWithListing(t, db)
	other := &domain.User{Name: "Other", Email: "other@plotsure.rw", PasswordHash: "x", Role: domain.RoleBroker, IsActive: true}
	require.NoError(t, db.Create(other).Error)

	m := seedMedia(t, db, listing.ID, domain.MediaImage, false)
	_, err := svc.SetPrimary(context.Background(),
		accesspolicy.Requester{UserID: other.ID, Role: other.Role}, m.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestVerifyDocument_AdminOnly(t *testing.T) {
	svc, db := setupMediaTest(t)
	broker, listing := seedBrokerWithListing(t, db)
	admin := &domain.User{Name: "Admin", Email: "admin@plotsure.rw", PasswordHash: "x", Role: domain.RoleAdmin, IsActive: true}
	require.NoError(t, db.Create(admin).Error)

	doc := &domain.Document{
		ListingID: listing.ID, Name: "Deed", DocumentType: domain.DocTitleDeed,
		FilePath: "uploads/documents/d.pdf", FileName: "d.pdf", FileSize: 10, FileType: "application/pdf",
	}
	require.NoError(t, db.Create(doc).Error)

	_, err := svc.VerifyDocument(context.Background(),
		accesspolicy.Requester{UserID: broker.ID, Role: broker.Role}, doc.ID, "")
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	verified, err := svc.VerifyDocument(context.Background(),
		accesspolicy.Requester{UserID: admin.ID, Role: admin.Role}, doc.ID, "checked against registry")
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Equal(t, admin.ID, *verified.VerifiedBy)
	assert.Equal(t, "checked against registry", verified.VerificationNotes)
}

func TestReorder_UpdatesDisplayOrder(t *testing.T) {
	svc, db := setupMediaTest(t)
	broker, listing := seedBrokerWithListing(t, db)
	req := accesspolicy.Requester{UserID: broker.ID, Role: broker.Role}

	a := seedMedia(t, db, listing.ID, domain.MediaImage, false)
	b := seedMedia(t, db, listing.ID, domain.MediaImage, false)

	require.NoError(t, svc.Reorder(context.Background(), req, listing.ID, []uint{b.ID, a.ID}))

	var bReloaded, aReloaded domain.Media
	require.NoError(t, db.First(&bReloaded, b.ID).Error)
	require.NoError(t, db.First(&aReloaded, a.ID).Error)
	assert.Equal(t, 0, bReloaded.DisplayOrder)
	assert.Equal(t, 1, aReloaded.DisplayOrder)
}
