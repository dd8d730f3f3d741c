package listings

import (
	"context"
	"regexp"
	"testing"

	"plotsure-backend/internal/application/accesspolicy"
	"plotsure-backend/internal/domain"
	"plotsure-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupListingTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Listing{}, &domain.Document{}, &domain.Media{},
	))
	return &Service{DB: db}, db
}

func seedUser(t *testing.T, db *gorm.DB, role, email string) *domain.User {
	u := &domain.User{Name: "User", Email: email, PasswordHash: "x", Role: role, IsActive: true}
	require.NoError(t, db.Create(u).Error)
	return u
}

func validCreate() CreateInput {
	return CreateInput{
		Title:             "Residential plot in Nyamata",
		Description:       "A well located residential plot close to the tarmac road.",
		Sector:            "Nyamata",
		Cell:              "Kanazi",
		Village:           "Kigali",
		PriceAmount:       5_000_000,
		LandSizeValue:     600,
		LandType:          domain.LandResidential,
		LandownerName:     "Owner Name",
		LandownerPhone:    "+250788000000",
		LandownerIDNumber: "119900001111",
	}
}

func TestCreate_DefaultsAndReference(t *testing.T) {
	svc, db := setupListingTest(t)
	broker := seedUser(t, db, domain.RoleBroker, "broker@plotsure.rw")

	listing, err := svc.Create(context.Background(), broker.ID, validCreate())
	require.NoError(t, err)

	assert.Equal(t, domain.ListingDraft, listing.Status)
	assert.Equal(t, "Bugesera", listing.District)
	assert.Equal(t, domain.CurrencyRWF, listing.PriceCurrency)
	assert.True(t, listing.PriceNegotiable)
	assert.Equal(t, "sqm", listing.LandSizeUnit)
	assert.Regexp(t, regexp.MustCompile(`^PSC\d{9}$`), listing.ListingReference)
}

func TestCreate_Validation(t *testing.T) {
	svc, db := setupListingTest(t)
	broker := seedUser(t, db, domain.RoleBroker, "broker@plotsure.rw")

	in := validCreate()
	in.Title = "tiny"
	in.PriceAmount = 0
	in.LandType = "swamp"
	_, err := svc.Create(context.Background(), broker.ID, in)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Fields, "title")
	assert.Contains(t, e.Fields, "price_amount")
	assert.Contains(t, e.Fields, "land_type")
}

func TestUpdate_OwnershipEnforced(t *testing.T) {
	svc, db := setupListingTest(t)
	owner := seedUser(t, db, domain.RoleBroker, "owner@plotsure.rw")
	other := seedUser(t, db, domain.RoleBroker, "other@plotsure.rw")

	listing, err := svc.Create(context.Background(), owner.ID, validCreate())
	require.NoError(t, err)

	newTitle := "Updated plot title here"
	_, err = svc.Update(context.Background(),
		accesspolicy.Requester{UserID: other.ID, Role: other.Role},
		listing.ID, UpdateInput{Title: &newTitle})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	updated, err := svc.Update(context.Background(),
		accesspolicy.Requester{UserID: owner.ID, Role: owner.Role},
		listing.ID, UpdateInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
}

func TestVerify_ForcesActiveAndStamps(t *testing.T) {
	svc, db := setupListingTest(t)
	broker := seedUser(t, db, domain.RoleBroker, "broker@plotsure.rw")
	admin := seedUser(t, db, domain.RoleAdmin, "admin@plotsure.rw")

	listing, err := svc.Create(context.Background(), broker.ID, validCreate())
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(),
		accesspolicy.Requester{UserID: broker.ID, Role: broker.Role}, listing.ID, "")
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	verified, err := svc.Verify(context.Background(),
		accesspolicy.Requester{UserID: admin.ID, Role: admin.Role}, listing.ID, "docs checked")
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Equal(t, domain.ListingActive, verified.Status)
	require.NotNil(t, verified.VerifiedBy)
	assert.Equal(t, admin.ID, *verified.VerifiedBy)
	assert.NotNil(t, verified.VerificationDate)
}

func TestIncrementCounters_Atomic(t *testing.T) {
	svc, db := setupListingTest(t)
	broker := seedUser(t, db, domain.RoleBroker, "broker@plotsure.rw")

	listing, err := svc.Create(context.Background(), broker.ID, validCreate())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.IncrementViews(context.Background(), listing.ID))
	}
	require.NoError(t, svc.IncrementInquiries(context.Background(), listing.ID))

	var got domain.Listing
	require.NoError(t, db.First(&got, listing.ID).Error)
	assert.Equal(t, 3, got.ViewsCount)
	assert.Equal(t, 1, got.InquiriesCount)
}

func TestList_PublicOnlyAndFilters(t *testing.T) {
	svc, db := setupListingTest(t)
	broker := seedUser(t, db, domain.RoleBroker, "broker@plotsure.rw")
	admin := seedUser(t, db, domain.RoleAdmin, "admin@plotsure.rw")

	draft, err := svc.Create(context.Background(), broker.ID, validCreate())
	require.NoError(t, err)
	active, err := svc.Create(context.Background(), broker.ID, validCreate())
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(),
		accesspolicy.Requester{UserID: admin.ID, Role: admin.Role}, active.ID, "")
	require.NoError(t, err)

	public, err := svc.List(context.Background(), Filter{PublicOnly: true})
	require.NoError(t, err)
	require.Len(t, public.Items, 1)
	assert.Equal(t, active.ID, public.Items[0].ID)

	drafts, err := svc.List(context.Background(), Filter{Status: domain.ListingDraft})
	require.NoError(t, err)
	require.Len(t, drafts.Items, 1)
	assert.Equal(t, draft.ID, drafts.Items[0].ID)

	priced, err := svc.List(context.Background(), Filter{MinPrice: 10_000_000})
	require.NoError(t, err)
	assert.Empty(t, priced.Items)
}

func TestList_FeaturedSortFirst(t *testing.T) {
	svc, db := setupListingTest(t)
	broker := seedUser(t, db, domain.RoleBroker, "broker@plotsure.rw")
	admin := seedUser(t, db, domain.RoleAdmin, "admin@plotsure.rw")

	first, err := svc.Create(context.Background(), broker.ID, validCreate())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), broker.ID, validCreate())
	require.NoError(t, err)

	_, err = svc.ToggleFeatured(context.Background(),
		accesspolicy.Requester{UserID: admin.ID, Role: admin.Role}, first.ID)
	require.NoError(t, err)

	page, err := svc.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, first.ID, page.Items[0].ID)
	assert.Equal(t, second.ID, page.Items[1].ID)
}

func TestGetByReference(t *testing.T) {
	svc, db := setupListingTest(t)
	broker := seedUser(t, db, domain.RoleBroker, "broker@plotsure.rw")

	listing, err := svc.Create(context.Background(), broker.ID, validCreate())
	require.NoError(t, err)

	got, err := svc.GetByReference(context.Background(), listing.ListingReference)
	require.NoError(t, err)
	assert.Equal(t, listing.ID, got.ID)

	_, err = svc.GetByReference(context.Background(), "PSC000000000")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDelete_RemovesAttachmentRows(t *testing.T) {
	svc, db := setupListingTest(t)
	broker := seedUser(t, db, domain.RoleBroker, "broker@plotsure.rw")

	listing, err := svc.Create(context.Background(), broker.ID, validCreate())
	require.NoError(t, err)

	doc := &domain.Document{
		ListingID: listing.ID, Name: "Title deed", DocumentType: domain.DocTitleDeed,
		FilePath: "uploads/documents/deed.pdf", FileName: "deed.pdf", FileSize: 100, FileType: "application/pdf",
	}
	require.NoError(t, db.Create(doc).Error)
	m := &domain.Media{
		ListingID: listing.ID, MediaType: domain.MediaImage,
		FilePath: "uploads/images/a.jpg", FileName: "a.jpg", FileSize: 100, FileType: "image/jpeg",
	}
	require.NoError(t, db.Create(m).Error)

	require.NoError(t, svc.Delete(context.Background(),
		accesspolicy.Requester{UserID: broker.ID, Role: broker.Role}, listing.ID))

	var docs, medias int64
	require.NoError(t, db.Model(&domain.Document{}).Where("listing_id = ?", listing.ID).Count(&docs).Error)
	require.NoError(t, db.Model(&domain.Media{}).Where("listing_id = ?", listing.ID).Count(&medias).Error)
	assert.Zero(t, docs)
	assert.Zero(t, medias)
}

func TestStats_BrokerScoped(t *testing.T) {
	svc, db := setupListingTest(t)
	brokerA := seedUser(t, db, domain.RoleBroker, "a@plotsure.rw")
	brokerB := seedUser(t, db, domain.RoleBroker, "b@plotsure.rw")
	admin := seedUser(t, db, domain.RoleAdmin, "admin@plotsure.rw")

	_, err := svc.Create(context.Background(), brokerA.ID, validCreate())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), brokerB.ID, validCreate())
	require.NoError(t, err)

	statsA, err := svc.Stats(context.Background(), accesspolicy.Requester{UserID: brokerA.ID, Role: brokerA.Role})
	require.NoError(t, err)
	assert.EqualValues(t, 1, statsA.Total)

	statsAll, err := svc.Stats(context.Background(), accesspolicy.Requester{UserID: admin.ID, Role: admin.Role})
	require.NoError(t, err)
	assert.EqualValues(t, 2, statsAll.Total)
	assert.EqualValues(t, 2, statsAll.ByStatus[domain.ListingDraft])
}
