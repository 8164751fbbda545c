package server

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"journals/internal/cache"
	"journals/internal/middleware"
	"journals/internal/models"
	"journals/internal/observability"
	"journals/internal/service"

	"github.com/gofiber/fiber/v2"
)

const challengeWindow = 5 * time.Minute

// journalRequest is the body of journal create and update. A null or absent
// pin keeps the stored PIN, an empty string clears it.
type journalRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	IsPrivate   bool    `json:"is_private"`
	PIN         *string `json:"pin"`
}

// GetJournals handles GET /api/journals
func (s *Server) GetJournals(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	journals, err := s.journalService.ListJournals(c.UserContext(), principal(c), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(models.JournalViews(journals))
}

// GetJournal handles GET /api/journals/:id
func (s *Server) GetJournal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	journal, err := s.journalService.GetJournal(c.UserContext(), principal(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(journal.View())
}

// CreateJournal handles POST /api/journals
func (s *Server) CreateJournal(c *fiber.Ctx) error {
	var req journalRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	journal, err := s.journalService.CreateJournal(c.UserContext(), service.CreateJournalInput{
		Principal:   principal(c),
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsPrivate:   req.IsPrivate,
		PIN:         req.PIN,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(journal.View())
}

// UpdateJournal handles PUT /api/journals/:id
func (s *Server) UpdateJournal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req journalRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	journal, err := s.journalService.UpdateJournal(c.UserContext(), service.UpdateJournalInput{
		Principal:   principal(c),
		JournalID:   id,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsPrivate:   req.IsPrivate,
		PIN:         req.PIN,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(journal.View())
}

// DeleteJournal handles DELETE /api/journals/:id
func (s *Server) DeleteJournal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.journalService.DeleteJournal(c.UserContext(), principal(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetJournalPosts handles GET /api/journals/:id/posts
func (s *Server) GetJournalPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	posts, err := s.journalService.ListJournalPosts(c.UserContext(), principal(c), id, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// ChallengeJournal handles POST /api/journals/:id/challenge
func (s *Server) ChallengeJournal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		PIN string `json:"pin"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if !s.allowChallenge(c, id) {
		observability.PINChallenges.WithLabelValues(observability.ChallengeLimited).Inc()
		return models.RespondWithAppError(c,
			models.NewRateLimitedError("Too many PIN attempts, please try again later."))
	}

	valid, err := s.journalService.Challenge(c.UserContext(), service.ChallengeInput{
		Principal: principal(c),
		JournalID: id,
		PIN:       req.PIN,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"valid": valid})
}

// allowChallenge throttles PIN guessing per journal and caller. It fails open
// when Redis is unavailable.
func (s *Server) allowChallenge(c *fiber.Ctx, journalID uint) bool {
	if s.redis == nil || middleware.RateLimitDisabled() {
		return true
	}
	caller := c.IP()
	if uid, ok := c.Locals("userID").(uint); ok {
		caller = "user:" + strconv.FormatUint(uint64(uid), 10)
	}
	key := fmt.Sprintf("%d:%s", journalID, caller)

	allowed, err := middleware.CheckRateLimit(c.UserContext(), s.redis,
		cache.ChallengeLimitResource, key, s.config.PINChallengeLimit, challengeWindow)
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "pin challenge rate limit check failed",
			slog.String("error", err.Error()),
		)
		return true
	}
	return allowed
}

// ExportJournal handles GET /api/journals/:id/export
func (s *Server) ExportJournal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	result, err := s.journalService.ExportJournal(c.UserContext(), principal(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, result.Filename))
	return c.Send(result.Content)
}
