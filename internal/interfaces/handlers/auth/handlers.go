package auth

import (
	"plotsure-backend/internal/application/auth"
	"plotsure-backend/internal/middleware"
	"plotsure-backend/internal/pkg/apperr"
	"plotsure-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes account and session endpoints.
type Handlers struct {
	Service *auth.Service
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func (h *Handlers) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	user, err := h.Service.Register(c.UserContext(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Account created successfully", user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	user, token, err := h.Service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Logged in successfully", fiber.Map{
		"token": token,
		"user":  user,
	})
}

func (h *Handlers) Logout(c *fiber.Ctx) error {
	claims := middleware.CurrentClaims(c)
	if err := h.Service.Logout(c.UserContext(), claims); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Logged out successfully", nil)
}

func (h *Handlers) Me(c *fiber.Ctx) error {
	return response.Success(c, "Profile retrieved", middleware.CurrentUser(c))
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	user := middleware.CurrentUser(c)
	updated, err := h.Service.UpdateProfile(c.UserContext(), user.ID, auth.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profile updated successfully", updated)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handlers) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, apperr.Validation("Invalid request body"))
	}
	user := middleware.CurrentUser(c)
	if err := h.Service.ChangePassword(c.UserContext(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Password changed successfully", nil)
}
