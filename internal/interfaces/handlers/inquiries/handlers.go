package inquiries

import (
	"strconv"
	"time"

	"plotsure-backend/internal/application/accesspolicy"
	"plotsure-backend/internal/application/activity"
	"plotsure-backend/internal/application/inquiries"
	"plotsure-backend/internal/domain"
	"plotsure-backend/internal/middleware"
	"plotsure-backend/internal/pkg/apperr"
	"plotsure-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes inquiry intake and staff workflow endpoints.
type Handlers struct {
	Service  *inquiries.Service
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
	h.Activity.Record(c.UserContext(), userID, action, "inquiry", entityID, details)
}

func auditFrom(c *fiber.Ctx) domain.Audit {
	return domain.Audit{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		Referrer:  c.Get(fiber.HeaderReferer),
	}
}

type createRequest struct {
	ListingID *uint `json:"listing_id"`

	InquirerName     string `json:"inquirer_name"`
	InquirerEmail    string `json:"inquirer_email"`
	InquirerPhone    string `json:"inquirer_phone"`
	InquirerLocation string `json:"inquirer_location"`
	IsDiaspora       bool   `json:"is_diaspora"`
	PreferredContact string `json:"preferred_contact"`

	InquiryType     string   `json:"inquiry_type"`
	Message         string   `json:"message"`
	BudgetMin       *float64 `json:"budget_min"`
	BudgetMax       *float64 `json:"budget_max"`
	BudgetCurrency  string   `json:"budget_currency"`
	Timeframe       string   `json:"timeframe"`
	VisitPreference string   `json:"visit_preference"`
}

// Create is the public intake endpoint; no authentication.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	inq, err := h.Service.Create(c.UserContext(), inquiries.CreateInput{
		ListingID:        req.ListingID,
		InquirerName:     req.InquirerName,
		InquirerEmail:    req.InquirerEmail,
		InquirerPhone:    req.InquirerPhone,
		InquirerLocation: req.InquirerLocation,
		IsDiaspora:       req.IsDiaspora,
		PreferredContact: req.PreferredContact,
		InquiryType:      req.InquiryType,
		Message:          req.Message,
		BudgetMin:        req.BudgetMin,
		BudgetMax:        req.BudgetMax,
		BudgetCurrency:   req.BudgetCurrency,
		Timeframe:        req.Timeframe,
		VisitPreference:  req.VisitPreference,
		Audit:            auditFrom(c),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Inquiry submitted successfully", inq)
}

func (h *Handlers) List(c *fiber.Ctx) error {
	f := inquiries.Filter{
		Status:      c.Query("status"),
		Priority:    c.Query("priority"),
		InquiryType: c.Query("inquiry_type"),
		Search:      c.Query("search"),
		Page:        c.QueryInt("page", 1),
		PerPage:     c.QueryInt("per_page", 10),
	}
	if v := c.QueryInt("listing_id"); v > 0 {
		f.ListingID = uint(v)
	}
	if v := c.QueryInt("assigned_to"); v > 0 {
		f.AssignedTo = uint(v)
	}
	page, err := h.Service.List(c.UserContext(), requester(c), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Inquiries retrieved", page)
}

func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	inq, err := h.Service.Get(c.UserContext(), requester(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Inquiry retrieved", inq)
}

type updateStatusRequest struct {
	Status        string   `json:"status"`
	Priority      string   `json:"priority"`
	InternalNotes *string  `json:"internal_notes"`
	Tags          []string `json:"tags"`
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
	inq, err := h.Service.UpdateStatus(c.UserContext(), requester(c), id, inquiries.UpdateStatusInput{
		Status:        req.Status,
		Priority:      req.Priority,
		InternalNotes: req.InternalNotes,
		Tags:          req.Tags,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	h.record(c, "inquiry.status_updated", inq.ID, map[string]interface{}{"status": inq.Status})
	return response.Success(c, "Inquiry updated successfully", inq)
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
	inq, err := h.Service.Assign(c.UserContext(), requester(c), id, req.AssigneeID)
	if err != nil {
		return response.FromError(c, err)
	}
	h.record(c, "inquiry.assigned", inq.ID, map[string]interface{}{"assignee_id": req.AssigneeID})
	return response.Success(c, "Inquiry assigned successfully", inq)
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
	inq, err := h.Service.Respond(c.UserContext(), requester(c), id, req.Message, req.SendEmail)
	if err != nil {
		return response.FromError(c, err)
	}
	h.record(c, "inquiry.responded", inq.ID, nil)
	return response.Success(c, "Response recorded successfully", inq)
}

type convertRequest struct {
	ConversionValue *float64 `json:"conversion_value"`
}

func (h *Handlers) Convert(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req convertRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	inq, err := h.Service.Convert(c.UserContext(), requester(c), id, req.ConversionValue)
	if err != nil {
		return response.FromError(c, err)
	}
	h.record(c, "inquiry.converted", inq.ID, nil)
	return response.Success(c, "Inquiry converted successfully", inq)
}

type followUpRequest struct {
	Date  time.Time `json:"date"`
	Notes string    `json:"notes"`
}

func (h *Handlers) SetFollowUp(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req followUpRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	inq, err := h.Service.SetFollowUp(c.UserContext(), requester(c), id, inquiries.FollowUpInput{
		Date:  req.Date,
		Notes: req.Notes,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Follow-up scheduled successfully", inq)
}

func (h *Handlers) DueForFollowUp(c *fiber.Ctx) error {
	items, err := h.Service.DueForFollowUp(c.UserContext(), requester(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Follow-ups retrieved", items)
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
	h.record(c, "inquiry.deleted", id, nil)
	return response.Success(c, "Inquiry deleted successfully", nil)
}
