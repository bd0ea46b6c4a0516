package handlers

import (
	"github.com/arzan03/FilesManager/internal/middleware"
	"github.com/arzan03/FilesManager/internal/models"
	"github.com/gofiber/fiber/v2"
)

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func viewUser(u *models.User) userView {
	return userView{ID: u.ID.Hex(), Email: u.Email}
}

// PostUser registers a new user.
func (h *Handler) PostUser(c *fiber.Ctx) error {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := h.auth.Register(c.UserContext(), request.Email, request.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(viewUser(user))
}

// GetMe returns the user behind the X-Token header.
func (h *Handler) GetMe(c *fiber.Ctx) error {
	user, err := h.auth.CurrentUser(c.UserContext(), c.Get(middleware.TokenHeader))
	if err != nil {
		return err
	}
	return c.JSON(viewUser(user))
}

// Connect exchanges Basic credentials for a session token.
func (h *Handler) Connect(c *fiber.Ctx) error {
	token, err := h.auth.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": token})
}

// Disconnect ends the session behind the X-Token header.
func (h *Handler) Disconnect(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext(), c.Get(middleware.TokenHeader)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
