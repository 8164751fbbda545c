package server

import (
	"journals/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Follow handles POST /api/follow
func (s *Server) Follow(c *fiber.Ctx) error {
	var req struct {
		FollowedUserID uint `json:"followed_user_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	follow, err := s.followService.Follow(c.UserContext(), principal(c), req.FollowedUserID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(follow)
}

// Unfollow handles DELETE /api/follow/:userId
func (s *Server) Unfollow(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.followService.Unfollow(c.UserContext(), principal(c), userID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFollowing handles GET /api/follow?search=
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	follows, err := s.followService.ListFollowing(c.UserContext(), principal(c), c.Query("search"), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(follows)
}

// GetUserFollowers handles GET /api/users/:id/followers
func (s *Server) GetUserFollowers(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	follows, err := s.followService.ListUserFollowers(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(follows)
}

// GetUserFollowing handles GET /api/users/:id/following
func (s *Server) GetUserFollowing(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	follows, err := s.followService.ListUserFollowing(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(follows)
}
