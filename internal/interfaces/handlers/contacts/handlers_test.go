package contacts

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	contactsvc "plotsure-backend/internal/application/contacts"
	"plotsure-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupContactsTest(t *testing.T) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Contact{}))
	return &Handlers{Service: &contactsvc.Service{DB: db}}, db
}

func TestCreateContact_Public(t *testing.T) {
	h, _ := setupContactsTest(t)
	app := fiber.New()
	app.Post("/contacts", h.Create)

	body, _ := json.Marshal(map[string]interface{}{
		"name":    "Eric Niyonzima",
		"email":   "eric@example.com",
		"subject": "technical-support",
		"message": "I cannot upload my land title document from my phone.",
	})
	req := httptest.NewRequest("POST", "/contacts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, "new", data["status"])
	assert.Equal(t, "high", data["priority"], "technical support escalates")
}

func TestCreateContact_InvalidSubject(t *testing.T) {
	h, _ := setupContactsTest(t)
	app := fiber.New()
	app.Post("/contacts", h.Create)

	body, _ := json.Marshal(map[string]interface{}{
		"name":    "Eric Niyonzima",
		"email":   "eric@example.com",
		"subject": "spam",
		"message": "A message that is long enough to pass length checks.",
	})
	req := httptest.NewRequest("POST", "/contacts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestRespondContact_AsStaff(t *testing.T) {
	h, db := setupContactsTest(t)
	staff := &domain.User{Name: "Staff", Email: "staff@plotsure.rw", PasswordHash: "x", Role: domain.RoleBroker, IsActive: true}
	require.NoError(t, db.Create(staff).Error)
	contact := &domain.Contact{
		Name: "Eric", Email: "eric@example.com", Subject: domain.SubjectPlotInterest,
		Message: "Tell me more about the plot.", Status: domain.StatusNew, Priority: domain.PriorityMedium,
	}
	require.NoError(t, db.Create(contact).Error)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("current_user", staff)
		return c.Next()
	})
	app.Post("/contacts/:id/respond", h.Respond)

	body, _ := json.Marshal(map[string]interface{}{"message": "Here are the details you asked for."})
	req := httptest.NewRequest("POST", "/contacts/1/respond", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, "responded", data["status"])
	assert.Equal(t, "Here are the details you asked for.", data["response_message"])
}
