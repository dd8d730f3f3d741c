package contacts

import (
	"strconv"

	"plotsure-backend/internal/application/accesspolicy"
	"plotsure-backend/internal/application/activity"
	"plotsure-backend/internal/application/contacts"
	"plotsure-backend/internal/domain"
	"plotsure-backend/internal/middleware"
	"plotsure-backend/internal/pkg/apperr"
	"plotsure-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the contact-form intake and staff workflow endpoints.
type Handlers struct {
	Service  *contacts.Service
	Activity *activity.Service
}

func requester(c *fiber.Ctx) accesspolicy.Requester {
	u := middleware.CurrentUser(c)
	if u == nil {
		return accesspolicy.Requester{}
	}
	return accesspolicy.Requester{UserID: u.ID, Role: u.Role}
}

func idParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid id")
	}
	return uint(id), nil
}

func (h *Handlers) record(c *fiber.Ctx, action string, entityID uint, details map[string]interface{}) {
	if h.Activity == nil {
		return
	}
	var userID *uint
	if u := middleware.CurrentUser(c); u != nil {
		userID = &u.ID
	}
	h.Activity.Record(c.UserContext(), userID, action, "contact", entityID, details)
}

type createRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Create is the public intake endpoint; no authentication.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	contact, err := h.Service.Create(c.UserContext(), contacts.CreateInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
		Audit: domain.Audit{
			IPAddress: c.IP(),
			UserAgent: c.Get(fiber.HeaderUserAgent),
			Referrer:  c.Get(fiber.HeaderReferer),
		},
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Message sent successfully", contact)
}

func (h *Handlers) List(c *fiber.Ctx) error {
	f := contacts.Filter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Subject:  c.Query("subject"),
		Search:   c.Query("search"),
		Page:     c.QueryInt("page", 1),
		PerPage:  c.QueryInt("per_page", 10),
	}
	if v := c.QueryInt("assigned_to"); v > 0 {
		f.AssignedTo = uint(v)
	}
	page, err := h.Service.List(c.UserContext(), requester(c), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Contact submissions retrieved", page)
}

func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	contact, err := h.Service.Get(c.UserContext(), requester(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Contact submission retrieved", contact)
}

type updateStatusRequest struct {
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	contact, err := h.Service.UpdateStatus(c.UserContext(), requester(c), id, contacts.UpdateStatusInput{
		Status:   req.Status,
		Priority: req.Priority,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	h.record(c, "contact.status_updated", contact.ID, map[string]interface{}{"status": contact.Status})
	return response.Success(c, "Contact submission updated successfully", contact)
}

type assignRequest struct {
	AssigneeID uint `json:"assignee_id"`
}

func (h *Handlers) Assign(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	contact, err := h.Service.Assign(c.UserContext(), requester(c), id, req.AssigneeID)
	if err != nil {
		return response.FromError(c, err)
	}
	h.record(c, "contact.assigned", contact.ID, map[string]interface{}{"assignee_id": req.AssigneeID})
	return response.Success(c, "Contact submission assigned successfully", contact)
}

type respondRequest struct {
	Message   string `json:"message"`
	SendEmail bool   `json:"send_email"`
}

func (h *Handlers) Respond(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req respondRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	contact, err := h.Service.Respond(c.UserContext(), requester(c), id, req.Message, req.SendEmail)
	if err != nil {
		return response.FromError(c, err)
	}
	h.record(c, "contact.responded", contact.ID, nil)
	return response.Success(c, "Response recorded successfully", contact)
}

func (h *Handlers) Stats(c *fiber.Ctx) error {
	stats, err := h.Service.Stats(c.UserContext(), requester(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Statistics retrieved", stats)
}

func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), requester(c), id); err != nil {
		return response.FromError(c, err)
	}
	h.record(c, "contact.deleted", id, nil)
	return response.Success(c, "Contact submission deleted successfully", nil)
}
