package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags returns configured feature flags and their state for the
// current caller. Anonymous callers see percentage rollouts as off.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	p := principal(c)
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(p.UserID),
	})
}
