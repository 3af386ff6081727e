package server

import (
	"trainhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Text *string `json:"text"`
}

// GetPostComments handles GET /api/posts/:id/comments
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	comments, svcErr := s.commentService.ListByPost(c.Context(), s.optionalActor(c), postID)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	text := ""
	if req.Text != nil {
		text = *req.Text
	}

	comment, svcErr := s.commentService.CreateComment(c.Context(), s.actor(c), postID, text)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComment handles GET /api/comments/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	comment, svcErr := s.commentService.GetComment(c.Context(), id)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(comment)
}

// UpdateComment handles PATCH /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, svcErr := s.commentService.UpdateComment(c.Context(), s.actor(c), id, req.Text)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(comment)
}

// ReplaceComment handles PUT /api/comments/:id
func (s *Server) ReplaceComment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, svcErr := s.commentService.ReplaceComment(c.Context(), s.actor(c), id, req.Text)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if svcErr := s.commentService.DeleteComment(c.Context(), s.actor(c), id); svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
