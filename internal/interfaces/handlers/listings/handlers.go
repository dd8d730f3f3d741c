package listings

import (
	"strconv"

	"plotsure-backend/internal/application/accesspolicy"
	"plotsure-backend/internal/application/activity"
	"plotsure-backend/internal/application/listings"
	"plotsure-backend/internal/middleware"
	"plotsure-backend/internal/pkg/apperr"
	"plotsure-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the listing registry over HTTP.
type Handlers struct {
	Service  *listings.Service
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
	h.Activity.Record(c.UserContext(), userID, action, "listing", entityID, details)
}

// List serves public browsing: only active listings, filterable.
func (h *Handlers) List(c *fiber.Ctx) error {
	f := filterFromQuery(c)
	f.PublicOnly = middleware.CurrentUser(c) == nil
	page, err := h.Service.List(c.UserContext(), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listings retrieved", page)
}

// My serves the calling broker's own listings in any status.
func (h *Handlers) My(c *fiber.Ctx) error {
	f := filterFromQuery(c)
	f.BrokerID = middleware.CurrentUser(c).ID
	page, err := h.Service.List(c.UserContext(), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listings retrieved", page)
}

func filterFromQuery(c *fiber.Ctx) listings.Filter {
	f := listings.Filter{
		Status:   c.Query("status"),
		LandType: c.Query("land_type"),
		District: c.Query("district"),
		Sector:   c.Query("sector"),
		Search:   c.Query("search"),
		Page:     c.QueryInt("page", 1),
		PerPage:  c.QueryInt("per_page", 10),
	}
	f.MinPrice, _ = strconv.ParseFloat(c.Query("min_price"), 64)
	f.MaxPrice, _ = strconv.ParseFloat(c.Query("max_price"), 64)
	f.MinSize, _ = strconv.ParseFloat(c.Query("min_size"), 64)
	f.MaxSize, _ = strconv.ParseFloat(c.Query("max_size"), 64)
	if v := c.Query("featured"); v != "" {
		b := v == "true"
		f.Featured = &b
	}
	if v := c.Query("verified"); v != "" {
		b := v == "true"
		f.Verified = &b
	}
	return f
}

func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	// Only anonymous traffic counts as a view.
	countView := middleware.CurrentUser(c) == nil
	listing, err := h.Service.Get(c.UserContext(), id, countView)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listing retrieved", listing)
}

func (h *Handlers) GetByReference(c *fiber.Ctx) error {
	listing, err := h.Service.GetByReference(c.UserContext(), c.Params("reference"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listing retrieved", listing)
}

func (h *Handlers) Create(c *fiber.Ctx) error {
	var req listings.CreateInput
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	listing, err := h.Service.Create(c.UserContext(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	h.record(c, "listing.created", listing.ID, map[string]interface{}{"reference": listing.ListingReference})
	return response.Created(c, "Listing created successfully", listing)
}

func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req listings.UpdateInput
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	listing, err := h.Service.Update(c.UserContext(), requester(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	h.record(c, "listing.updated", listing.ID, nil)
	return response.Success(c, "Listing updated successfully", listing)
}

type verifyRequest struct {
	Notes string `json:"notes"`
}

func (h *Handlers) Verify(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	listing, err := h.Service.Verify(c.UserContext(), requester(c), id, req.Notes)
	if err != nil {
		return response.FromError(c, err)
	}
	h.record(c, "listing.verified", listing.ID, nil)
	return response.Success(c, "Listing verified successfully", listing)
}

func (h *Handlers) ToggleFeatured(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	listing, err := h.Service.ToggleFeatured(c.UserContext(), requester(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	h.record(c, "listing.featured_toggled", listing.ID, map[string]interface{}{"featured": listing.Featured})
	return response.Success(c, "Listing updated successfully", listing)
}

func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), requester(c), id); err != nil {
		return response.FromError(c, err)
	}
	h.record(c, "listing.deleted", id, nil)
	return response.Success(c, "Listing deleted successfully", nil)
}

func (h *Handlers) Stats(c *fiber.Ctx) error {
	stats, err := h.Service.Stats(c.UserContext(), requester(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Statistics retrieved", stats)
}
