package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/TNTKien/repo-timeline/internal/activity"
	"github.com/TNTKien/repo-timeline/internal/models"
	"github.com/TNTKien/repo-timeline/internal/session"
	"github.com/TNTKien/repo-timeline/internal/timeline"
)

type Options struct {
	DefaultPerPage int
	RequestTimeout time.Duration
}

type Handler struct {
	log      *zap.SugaredLogger
	fetcher  timeline.Fetcher
	sessions *session.Store
	opts     Options
}

func NewHandler(log *zap.SugaredLogger, fetcher timeline.Fetcher, sessions *session.Store, opts Options) *Handler {
	if opts.DefaultPerPage == 0 {
		opts.DefaultPerPage = models.DefaultPerPage
	}
	return &Handler{
		log:      log,
		fetcher:  fetcher,
		sessions: sessions,
		opts:     opts,
	}
}

// Health reports service liveness
func (h *Handler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "repo-timeline",
	})
}

// GetTimeline returns one merged page of commits, pull requests and issues
func (h *Handler) GetTimeline(c fiber.Ctx) error {
	req, err := h.pageRequest(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	snapshot, err := h.fetcher.FetchPage(ctx, req)
	if err != nil {
		h.logFailure("failed to fetch timeline", req.Repository, err)
		return writeError(c, err)
	}
	return c.JSON(snapshot)
}

// GetActivity returns analytics for one fetched page
func (h *Handler) GetActivity(c fiber.Ctx) error {
	req, err := h.pageRequest(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	snapshot, err := h.fetcher.FetchPage(ctx, req)
	if err != nil {
		h.logFailure("failed to fetch activity", req.Repository, err)
		return writeError(c, err)
	}

	top := fiber.Query[int](c, "top", activity.DefaultTopContributors)
	return c.JSON(fiber.Map{
		"repository": snapshot.Repository,
		"pagination": snapshot.Pagination,
		"activity":   activity.Summarize(snapshot.Items, top),
	})
}

type createSessionInput struct {
	Repository string `json:"repository"`
	PerPage    int    `json:"perPage"`
	Filter     string `json:"filter"`
}

type filterInput struct {
	Filter string `json:"filter"`
}

// CreateSession parses a free-form repository and loads its first page
func (h *Handler) CreateSession(c fiber.Ctx) error {
	var input createSessionInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "details": err.Error()})
	}

	repo, err := models.ParseRepoString(input.Repository)
	if err != nil {
		return writeError(c, err)
	}
	filter, err := models.ParseFilter(input.Filter)
	if err != nil {
		return writeError(c, err)
	}
	perPage := input.PerPage
	if perPage == 0 {
		perPage = h.opts.DefaultPerPage
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	s := timeline.NewSession(h.fetcher, repo, perPage)
	res, err := s.Load(ctx, filter)
	if err != nil {
		h.logFailure("failed to load session", repo, err)
		return writeError(c, err)
	}

	id := h.sessions.Create(s)
	h.log.Infow("session created", "session_id", id, "repository", repo.FullName(), "filter", filter)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       id,
		"added":    res.Added,
		"timeline": res.Timeline,
	})
}

// GetSession returns the accumulated view
func (h *Handler) GetSession(c fiber.Ctx) error {
	id := c.Params("id")
	s, ok := h.sessions.Get(id)
	if !ok {
		return writeError(c, errSessionNotFound)
	}
	return c.JSON(fiber.Map{"id": id, "timeline": s.View()})
}

// LoadMore fetches the next page for the session's current filter
func (h *Handler) LoadMore(c fiber.Ctx) error {
	id := c.Params("id")
	s, ok := h.sessions.Get(id)
	if !ok {
		return writeError(c, errSessionNotFound)
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	res, err := s.LoadMore(ctx)
	if err != nil {
		h.logFailure("failed to load more", s.Repository(), err)
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "added": res.Added, "timeline": res.Timeline})
}

// SetFilter switches the session filter and reloads from page 1
func (h *Handler) SetFilter(c fiber.Ctx) error {
	id := c.Params("id")
	s, ok := h.sessions.Get(id)
	if !ok {
		return writeError(c, errSessionNotFound)
	}

	var input filterInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "details": err.Error()})
	}
	filter, err := models.ParseFilter(input.Filter)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	res, err := s.Load(ctx, filter)
	if err != nil {
		h.logFailure("failed to change filter", s.Repository(), err)
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "added": res.Added, "timeline": res.Timeline})
}

// GetSessionActivity returns analytics over the accumulated view
func (h *Handler) GetSessionActivity(c fiber.Ctx) error {
	id := c.Params("id")
	s, ok := h.sessions.Get(id)
	if !ok {
		return writeError(c, errSessionNotFound)
	}

	view := s.View()
	top := fiber.Query[int](c, "top", activity.DefaultTopContributors)
	return c.JSON(fiber.Map{
		"id":         id,
		"repository": view.Repository,
		"pagination": view.Pagination,
		"activity":   activity.Summarize(view.Items, top),
	})
}

// DeleteSession drops a session
func (h *Handler) DeleteSession(c fiber.Ctx) error {
	if !h.sessions.Delete(c.Params("id")) {
		return writeError(c, errSessionNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) pageRequest(c fiber.Ctx) (models.PageRequest, error) {
	owner, repo := c.Query("owner"), c.Query("repo")
	if owner == "" || repo == "" {
		return models.PageRequest{}, errMissingRepo
	}

	filter, err := models.ParseFilter(c.Query("filter"))
	if err != nil {
		return models.PageRequest{}, err
	}

	req := models.PageRequest{
		Repository: models.Repository{Owner: owner, Name: repo},
		Page:       fiber.Query[int](c, "page", models.DefaultPage),
		PerPage:    fiber.Query[int](c, "perPage", h.opts.DefaultPerPage),
		Filter:     filter,
	}
	if err := req.Validate(); err != nil {
		return models.PageRequest{}, err
	}
	return req, nil
}

func (h *Handler) requestContext(c fiber.Ctx) (context.Context, context.CancelFunc) {
	if h.opts.RequestTimeout <= 0 {
		return context.WithCancel(c.Context())
	}
	return context.WithTimeout(c.Context(), h.opts.RequestTimeout)
}

func (h *Handler) logFailure(msg string, repo models.Repository, err error) {
	if models.IsUpstream(err) {
		h.log.Errorw(msg, "repository", repo.FullName(), "error", err)
		return
	}
	h.log.Debugw(msg, "repository", repo.FullName(), "error", err)
}
