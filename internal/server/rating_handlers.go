package server

import (
	"trainhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ratingRequest struct {
	Rating *int `json:"rating"`
}

// GetPostRatings handles GET /api/posts/:id/ratings
func (s *Server) GetPostRatings(c *fiber.Ctx) error {
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	ratings, svcErr := s.ratingService.ListByPost(c.Context(), s.optionalActor(c), postID)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(ratings)
}

// RatePost handles POST /api/posts/:id/ratings. The first rating from a
// user answers 201; rating the same post again updates in place and
// answers 200.
func (s *Server) RatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req ratingRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Rating == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Rating is required"))
	}

	rating, created, svcErr := s.ratingService.RatePost(c.Context(), s.actor(c), postID, *req.Rating)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(rating)
}

// GetRating handles GET /api/ratings/:id
func (s *Server) GetRating(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	rating, svcErr := s.ratingService.GetRating(c.Context(), id)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(rating)
}

// UpdateRating handles PATCH /api/ratings/:id
func (s *Server) UpdateRating(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req ratingRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	rating, svcErr := s.ratingService.UpdateRating(c.Context(), s.actor(c), id, req.Rating)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(rating)
}

// ReplaceRating handles PUT /api/ratings/:id
func (s *Server) ReplaceRating(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req ratingRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	rating, svcErr := s.ratingService.ReplaceRating(c.Context(), s.actor(c), id, req.Rating)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(rating)
}

// DeleteRating handles DELETE /api/ratings/:id
func (s *Server) DeleteRating(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if svcErr := s.ratingService.DeleteRating(c.Context(), s.actor(c), id); svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
