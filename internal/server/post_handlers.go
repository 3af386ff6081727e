package server

import (
	"trainhub/internal/models"
	"trainhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	SectionID       *uint  `json:"section_id"`
	Title           string `json:"title"`
	Type            string `json:"type"`
	Description     string `json:"description"`
	Calories        *int   `json:"calories"`
	Recommendations string `json:"recommendations"`
	IsPublic        bool   `json:"is_public"`
}

// updatePostRequest carries PATCH/PUT payloads. Pointer fields
// distinguish "absent" from "set to zero value".
type updatePostRequest struct {
	SectionID       *uint   `json:"section_id"`
	Title           *string `json:"title"`
	Type            *string `json:"type"`
	Description     *string `json:"description"`
	Calories        *int    `json:"calories"`
	Recommendations *string `json:"recommendations"`
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		Actor:           s.actor(c),
		SectionID:       req.SectionID,
		Title:           req.Title,
		Type:            req.Type,
		Description:     req.Description,
		Calories:        req.Calories,
		Recommendations: req.Recommendations,
		IsPublic:        req.IsPublic,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// CreateSectionPost handles POST /api/sections/:id/posts. The section
// from the route wins over any section_id in the body.
func (s *Server) CreateSectionPost(c *fiber.Ctx) error {
	sectionID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, svcErr := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		Actor:           s.actor(c),
		SectionID:       &sectionID,
		Title:           req.Title,
		Type:            req.Type,
		Description:     req.Description,
		Calories:        req.Calories,
		Recommendations: req.Recommendations,
		IsPublic:        req.IsPublic,
	})
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Actor:  s.optionalActor(c),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetPublicPosts handles GET /api/posts/public
func (s *Server) GetPublicPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	posts, err := s.postService.ListPublicPosts(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetPendingPosts handles GET /api/posts/pending
func (s *Server) GetPendingPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	posts, err := s.postService.ListPendingPosts(c.Context(), s.actor(c), page.Limit, page.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetSectionPosts handles GET /api/sections/:id/posts
func (s *Server) GetSectionPosts(c *fiber.Ctx) error {
	sectionID, err := s.parseID(c)
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	posts, svcErr := s.postService.ListSectionPosts(c.Context(), s.optionalActor(c), sectionID, page.Limit, page.Offset)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(posts)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	profileID, err := s.parseID(c)
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	actor := s.optionalActor(c)
	if _, svcErr := s.userService.GetUser(c.Context(), profileID); svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	posts, svcErr := s.postService.ListUserPosts(c.Context(), actor, profileID, page.Limit, page.Offset)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, svcErr := s.postService.GetPost(c.Context(), s.optionalActor(c), id)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(post)
}

// UpdatePost handles PATCH /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req updatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, svcErr := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		Actor:           s.actor(c),
		PostID:          id,
		SectionID:       req.SectionID,
		Title:           req.Title,
		Type:            req.Type,
		Description:     req.Description,
		Calories:        req.Calories,
		Recommendations: req.Recommendations,
	})
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(post)
}

// ReplacePost handles PUT /api/posts/:id
func (s *Server) ReplacePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req updatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, svcErr := s.postService.ReplacePost(c.Context(), service.ReplacePostInput{
		Actor:           s.actor(c),
		PostID:          id,
		SectionID:       req.SectionID,
		Title:           req.Title,
		Type:            req.Type,
		Description:     req.Description,
		Calories:        req.Calories,
		Recommendations: req.Recommendations,
	})
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if svcErr := s.postService.DeletePost(c.Context(), s.actor(c), id); svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// PublishPost handles PUT /api/posts/:id/publish
func (s *Server) PublishPost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, svcErr := s.postService.PublishPost(c.Context(), s.actor(c), id)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(post)
}

// ApprovePost handles PUT /api/posts/:id/approve
func (s *Server) ApprovePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, svcErr := s.postService.ApprovePost(c.Context(), s.actor(c), id)
	if svcErr != nil {
		return s.respondServiceError(c, svcErr)
	}

	return c.JSON(post)
}
