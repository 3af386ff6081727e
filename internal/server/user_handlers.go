package server

import (
	"trainhub/internal/models"
	"trainhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.Context(), s.actor(c).ID)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Email     *string `json:"email"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		Actor:     s.actor(c),
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetAllUsers handles GET /api/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	users, err := s.userService.ListUsers(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(users)
}

// GetPendingUsers handles GET /api/users/pending
func (s *Server) GetPendingUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListPendingUsers(c.Context(), s.actor(c))
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	user, svcErr := s.userService.GetUser(c.Context(), id)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(user)
}

// ApproveUser handles PUT /api/users/:id/approve
func (s *Server) ApproveUser(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	user, svcErr := s.userService.ApproveUser(c.Context(), s.actor(c), id)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if svcErr := s.userService.DeleteUser(c.Context(), s.actor(c), id); svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
