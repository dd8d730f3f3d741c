package listings

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	listsvc "plotsure-backend/internal/application/listings"
	"plotsure-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupListingsTest(t *testing.T) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Listing{}, &domain.Document{}, &domain.Media{},
	))
	svc := &listsvc.Service{DB: db}
	return &Handlers{Service: svc}, db
}

func asUser(u *domain.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("current_user", u)
		return c.Next()
	}
}

func seedBroker(t *testing.T, db *gorm.DB) *domain.User {
	u := &domain.User{Name: "Broker", Email: "broker@plotsure.rw", PasswordHash: "x", Role: domain.RoleBroker, IsActive: true}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestCreateListing_AsBroker(t *testing.T) {
	h, db := setupListingsTest(t)
	broker := seedBroker(t, db)

	app := fiber.New()
	app.Use(asUser(broker))
	app.Post("/listings", h.Create)

	body, _ := json.Marshal(map[string]interface{}{
		"title":               "Residential plot in Nyamata",
		"description":         "A well located residential plot close to the tarmac road.",
		"sector":              "Nyamata",
		"cell":                "Kanazi",
		"village":             "Kigali",
		"price_amount":        5000000,
		"land_size_value":     600,
		"land_type":           "residential",
		"landowner_name":      "Owner Name",
		"landowner_phone":     "+250788000000",
		"landowner_id_number": "119900001111",
	})
	req := httptest.NewRequest("POST", "/listings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, "draft", data["status"])
	assert.NotEmpty(t, data["listing_reference"])
}

func TestCreateListing_MissingFields(t *testing.T) {
	h, db := setupListingsTest(t)
	broker := seedBroker(t, db)

	app := fiber.New()
	app.Use(asUser(broker))
	app.Post("/listings", h.Create)

	body, _ := json.Marshal(map[string]interface{}{"title": "tiny"})
	req := httptest.NewRequest("POST", "/listings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestPublicList_OnlyActive(t *testing.T) {
	h, db := setupListingsTest(t)
	broker := seedBroker(t, db)

	draft := &domain.Listing{
		Title: "Draft plot here", Description: "Still being prepared for publication by the broker.",
		District: "Bugesera", Sector: "Nyamata", Cell: "Kanazi", Village: "Kigali",
		PriceAmount: 1, LandSizeValue: 1, LandType: domain.LandResidential,
		LandownerName: "O", LandownerPhone: "+250788000000", LandownerIDNumber: "1",
		BrokerID: broker.ID, Status: domain.ListingDraft, ListingReference: "PSC000000002",
	}
	active := &domain.Listing{
		Title: "Active plot here", Description: "Published and browsable by any anonymous visitor.",
		District: "Bugesera", Sector: "Nyamata", Cell: "Kanazi", Village: "Kigali",
		PriceAmount: 1, LandSizeValue: 1, LandType: domain.LandResidential,
		LandownerName: "O", LandownerPhone: "+250788000000", LandownerIDNumber: "1",
		BrokerID: broker.ID, Status: domain.ListingActive, ListingReference: "PSC000000003",
	}
	require.NoError(t, db.Create(draft).Error)
	require.NoError(t, db.Create(active).Error)

	app := fiber.New()
	app.Get("/listings", h.List)

	req := httptest.NewRequest("GET", "/listings", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	items := result["data"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Active plot here", items[0].(map[string]interface{})["title"])
}

func TestGetListing_NotFound(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := fiber.New()
	app.Get("/listings/:id", h.Get)

	req := httptest.NewRequest("GET", "/listings/42", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestGetListing_InvalidID(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := fiber.New()
	app.Get("/listings/:id", h.Get)

	req := httptest.NewRequest("GET", "/listings/abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
