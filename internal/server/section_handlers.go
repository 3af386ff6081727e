package server

import (
	"trainhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

type sectionRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// GetSections handles GET /api/sections
func (s *Server) GetSections(c *fiber.Ctx) error {
	sections, err := s.sectionService.ListSections(c.Context())
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(sections)
}

// GetSection handles GET /api/sections/:id
func (s *Server) GetSection(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	section, svcErr := s.sectionService.GetSection(c.Context(), id)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(section)
}

// CreateSection handles POST /api/sections
func (s *Server) CreateSection(c *fiber.Ctx) error {
	var req sectionRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	section, svcErr := s.sectionService.CreateSection(c.Context(), s.actor(c), name, description)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.Status(fiber.StatusCreated).JSON(section)
}

// UpdateSection handles PATCH /api/sections/:id
func (s *Server) UpdateSection(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req sectionRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	section, svcErr := s.sectionService.UpdateSection(c.Context(), s.actor(c), id, req.Name, req.Description)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(section)
}

// ReplaceSection handles PUT /api/sections/:id
func (s *Server) ReplaceSection(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req sectionRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	section, svcErr := s.sectionService.ReplaceSection(c.Context(), s.actor(c), id, req.Name, req.Description)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(section)
}

// DeleteSection handles DELETE /api/sections/:id
func (s *Server) DeleteSection(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if svcErr := s.sectionService.DeleteSection(c.Context(), s.actor(c), id); svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
