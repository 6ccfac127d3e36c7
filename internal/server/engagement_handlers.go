package server

import (
	"inkwell/internal/notifications"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ToggleLike handles POST /api/posts/:id/like
// @Summary Like or unlike a post
// @Tags engagement
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.LikeResult
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	res, err := s.engagementService.ToggleLike(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return s.respondError(c, err)
	}

	s.publishEvent(c.UserContext(), notifications.EventPostLikeToggled, map[string]any{
		"post_id": postID,
		"likes":   res.Likes,
	})
	return c.JSON(res)
}

// GetLikes handles GET /api/posts/:id/likes
// @Summary Like count
// @Tags engagement
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{likes=int}
// @Router /posts/{id}/likes [get]
func (s *Server) GetLikes(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	count, err := s.engagementService.LikeCount(c.UserContext(), postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"likes": count})
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Tags engagement
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{content=string} true "Comment"
// @Success 201 {object} object{status=string,comment=models.Comment}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	comment, err := s.engagementService.AddComment(c.UserContext(), service.AddCommentInput{
		UserID:  currentUserID(c),
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	s.publishEvent(c.UserContext(), notifications.EventCommentCreated, map[string]any{
		"post_id": postID,
		"comment": comment.View(),
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "comment": comment})
}

// GetComments handles GET /api/posts/:id/comments
// @Summary List a post's comments
// @Tags engagement
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} models.CommentView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.engagementService.ListComments(c.UserContext(), postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(comments)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete your own comment
// @Tags engagement
// @Security BearerAuth
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} object{status=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	removed, err := s.engagementService.DeleteComment(c.UserContext(), currentUserID(c), commentID)
	if err != nil {
		return s.respondError(c, err)
	}

	s.publishEvent(c.UserContext(), notifications.EventCommentDeleted, map[string]any{
		"post_id":    removed.PostID,
		"comment_id": removed.ID,
	})
	return c.JSON(fiber.Map{"status": "success"})
}
