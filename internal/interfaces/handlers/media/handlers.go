package media

import (
	"strconv"

	"plotsure-backend/internal/application/accesspolicy"
	"plotsure-backend/internal/application/media"
	"plotsure-backend/internal/middleware"
	"plotsure-backend/internal/pkg/apperr"
	"plotsure-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes document and media upload endpoints.
type Handlers struct {
	Service *media.Service
}

func requester(c *fiber.Ctx) accesspolicy.Requester {
	u := middleware.CurrentUser(c)
	if u == nil {
		return accesspolicy.Requester{}
	}
	return accesspolicy.Requester{UserID: u.ID, Role: u.Role}
}

func uintParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid id")
	}
	return uint(id), nil
}

func (h *Handlers) UploadDocument(c *fiber.Ctx) error {
	listingID, err := uintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	file, err := c.FormFile("file")
	if err != nil {
		return response.FromError(c, apperr.Validation("A file is required"))
	}
	in := media.UploadDocumentInput{
		Name:         c.FormValue("name"),
		DocumentType: c.FormValue("document_type"),
	}
	if v := c.FormValue("is_public"); v != "" {
		b := v == "true"
		in.IsPublic = &b
	}
	in.DisplayOrder, _ = strconv.Atoi(c.FormValue("display_order"))

	doc, err := h.Service.UploadDocument(c.UserContext(), requester(c), listingID, file, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Document uploaded successfully", doc)
}

type verifyRequest struct {
	Notes string `json:"notes"`
}

func (h *Handlers) VerifyDocument(c *fiber.Ctx) error {
	docID, err := uintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	doc, err := h.Service.VerifyDocument(c.UserContext(), requester(c), docID, req.Notes)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Document verified successfully", doc)
}

func (h *Handlers) DeleteDocument(c *fiber.Ctx) error {
	docID, err := uintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.DeleteDocument(c.UserContext(), requester(c), docID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Document deleted successfully", nil)
}

func (h *Handlers) UploadMedia(c *fiber.Ctx) error {
	listingID, err := uintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	file, err := c.FormFile("file")
	if err != nil {
		return response.FromError(c, apperr.Validation("A file is required"))
	}
	in := media.UploadMediaInput{
		MediaType: c.FormValue("media_type"),
		IsPrimary: c.FormValue("is_primary") == "true",
	}
	in.DisplayOrder, _ = strconv.Atoi(c.FormValue("display_order"))

	m, err := h.Service.UploadMedia(c.UserContext(), requester(c), listingID, file, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Media uploaded successfully", m)
}

func (h *Handlers) SetPrimary(c *fiber.Ctx) error {
	mediaID, err := uintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	m, err := h.Service.SetPrimary(c.UserContext(), requester(c), mediaID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Primary media updated successfully", m)
}

type reorderRequest struct {
	Order []uint `json:"order"`
}

func (h *Handlers) Reorder(c *fiber.Ctx) error {
	listingID, err := uintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req reorderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	if err := h.Service.Reorder(c.UserContext(), requester(c), listingID, req.Order); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Media order updated successfully", nil)
}

func (h *Handlers) DeleteMedia(c *fiber.Ctx) error {
	mediaID, err := uintParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.DeleteMedia(c.UserContext(), requester(c), mediaID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Media deleted successfully", nil)
}
