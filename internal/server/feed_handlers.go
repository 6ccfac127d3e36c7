package server

import (
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed
// @Summary Post feed
// @Description Every post with its like count and comments, in the requested order
// @Tags feed
// @Produce json
// @Param sort query string false "newest (default), likes|best, comments|commented"
// @Success 200 {array} models.FeedEntry
// @Failure 400 {object} models.ErrorResponse
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	order, err := service.ParseSortOrder(c.Query("sort"))
	if err != nil {
		return s.respondError(c, err)
	}
	return s.writeFeed(c, order)
}

// FeedBy serves the feed in a fixed order for the /feed/newest, /feed/best
// and /feed/commented shortcuts.
// @Summary Fixed-order feed
// @Tags feed
// @Produce json
// @Success 200 {array} models.FeedEntry
// @Router /feed/newest [get]
// @Router /feed/best [get]
// @Router /feed/commented [get]
func (s *Server) FeedBy(order service.SortOrder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return s.writeFeed(c, order)
	}
}

func (s *Server) writeFeed(c *fiber.Ctx, order service.SortOrder) error {
	entries, err := s.feedService.Feed(c.UserContext(), order)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(entries)
}
