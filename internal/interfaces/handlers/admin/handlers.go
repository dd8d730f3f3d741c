package admin

import (
	"bytes"
	"strconv"
	"time"

	"plotsure-backend/internal/application/activity"
	"plotsure-backend/internal/application/auth"
	"plotsure-backend/internal/middleware"
	"plotsure-backend/internal/pkg/apperr"
	"plotsure-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes admin-only user management and the audit trail.
type Handlers struct {
	Auth     *auth.Service
	Activity *activity.Service
}

func idParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid id")
	}
	return uint(id), nil
}

func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.Auth.ListUsers(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Users retrieved", users)
}

func (h *Handlers) setActive(c *fiber.Ctx, active bool) error {
	id, err := idParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	user, err := h.Auth.SetActive(c.UserContext(), id, active)
	if err != nil {
		return response.FromError(c, err)
	}
	admin := middleware.CurrentUser(c)
	action := "user.deactivated"
	msg := "User deactivated successfully"
	if active {
		action = "user.activated"
		msg = "User activated successfully"
	}
	h.Activity.Record(c.UserContext(), &admin.ID, action, "user", user.ID, nil)
	return response.Success(c, msg, user)
}

func (h *Handlers) ActivateUser(c *fiber.Ctx) error   { return h.setActive(c, true) }
func (h *Handlers) DeactivateUser(c *fiber.Ctx) error { return h.setActive(c, false) }

func activityFilter(c *fiber.Ctx) activity.Filter {
	f := activity.Filter{
		Action:  c.Query("action"),
		Entity:  c.Query("entity"),
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", 50),
	}
	if v := c.QueryInt("user_id"); v > 0 {
		f.UserID = uint(v)
	}
	if v := c.Query("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.Since = t
		}
	}
	if v := c.Query("until"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.Until = t
		}
	}
	return f
}

func (h *Handlers) ListActivity(c *fiber.Ctx) error {
	page, err := h.Activity.List(c.UserContext(), activityFilter(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Activity retrieved", page)
}

// ExportActivity streams the audit trail as a CSV attachment.
func (h *Handlers) ExportActivity(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.Activity.ExportCSV(c.UserContext(), activityFilter(c), &buf); err != nil {
		return response.FromError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="activity-export.csv"`)
	return c.Send(buf.Bytes())
}
