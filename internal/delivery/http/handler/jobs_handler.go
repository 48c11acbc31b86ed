package handler

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"jobboard/internal/delivery/http/middleware"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
	"jobboard/internal/pkg/response"
	jobuc "jobboard/internal/usecase/job"
)

type JobUsecase interface {
	List(ctx context.Context, params url.Values) ([]json.RawMessage, error)
	Create(ctx context.Context, owner uuid.UUID, in job.Job) (job.Job, error)
	Get(ctx context.Context, id uuid.UUID, slug string) (job.Job, error)
	Update(ctx context.Context, id uuid.UUID, in jobuc.UpdateInput) (job.Job, error)
	Delete(ctx context.Context, id uuid.UUID) error
	InRadius(ctx context.Context, zipcode string, miles float64) ([]json.RawMessage, error)
	Stats(ctx context.Context, topic string) ([]job.Stat, error)
	Apply(ctx context.Context, jobID uuid.UUID, applicant user.User, file *multipart.FileHeader) (string, error)
	PublishedBy(ctx context.Context, userID uuid.UUID) ([]json.RawMessage, error)
	AppliedBy(ctx context.Context, userID uuid.UUID) ([]json.RawMessage, error)
}

// OversizedResume turns the 413 for an apply request whose body exceeded the server limit
// into the resume size error. Other requests keep the 413.
func OversizedResume(maxSize int64) func(c fiber.Ctx) error {
	return func(c fiber.Ctx) error {
		if c.Method() != fiber.MethodPut || !strings.HasSuffix(c.Path(), "/apply") {
			return nil
		}
		return jobuc.ResumeTooLarge(maxSize)
	}
}

type JobsHandler struct {
	uc JobUsecase
}

func NewJobsHandler(uc JobUsecase) *JobsHandler {
	return &JobsHandler{uc: uc}
}

func (h *JobsHandler) RegisterRoutes(r fiber.Router, auth *middleware.AuthMiddleware) {
	if r == nil {
		return
	}

	employer := middleware.AuthorizeRoles(user.RoleEmployer, user.RoleAdmin)
	seeker := middleware.AuthorizeRoles(user.RoleUser)

	r.Get("/jobs", h.List)
	r.Get("/jobs/applied", auth.Authenticate(), seeker, h.Applied)
	r.Get("/jobs/published", auth.Authenticate(), employer, h.Published)
	r.Get("/jobs/:zipcode/:distance", h.InRadius)
	r.Get("/job/:id/:slug", h.Get)
	r.Get("/stats/:topic", h.Stats)

	r.Post("/job/new", auth.Authenticate(), employer, h.Create)
	r.Put("/job/:id/apply", auth.Authenticate(), seeker, h.Apply)
	r.Put("/job/:id", auth.Authenticate(), h.Update)
	r.Delete("/job/:id", auth.Authenticate(), h.Delete)
}

func (h *JobsHandler) List(c fiber.Ctx) error {
	items, err := h.uc.List(c.Context(), queryValues(c))
	if err != nil {
		return err
	}
	return response.List(c, items, len(items))
}

// Get answers with a one-element list, matching the shape clients already read.
func (h *JobsHandler) Get(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	j, err := h.uc.Get(c.Context(), id, c.Params("slug"))
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "", []job.Job{j})
}

func (h *JobsHandler) InRadius(c fiber.Ctx) error {
	miles, err := pathFloat(c, "distance")
	if err != nil {
		return err
	}
	items, err := h.uc.InRadius(c.Context(), c.Params("zipcode"), miles)
	if err != nil {
		return err
	}
	return response.List(c, items, len(items))
}

func (h *JobsHandler) Stats(c fiber.Ctx) error {
	topic := c.Params("topic")
	stats, err := h.uc.Stats(c.Context(), topic)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		return response.Info(c, "No stats found for - "+topic)
	}
	return response.Success(c, fiber.StatusOK, "", stats)
}

func (h *JobsHandler) Create(c fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	var in job.Job
	if err := bindBody(c, &in); err != nil {
		return err
	}

	created, err := h.uc.Create(c.Context(), u.ID, in)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Job is created", created)
}

func (h *JobsHandler) Update(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var in jobuc.UpdateInput
	if err := bindBody(c, &in); err != nil {
		return err
	}

	updated, err := h.uc.Update(c.Context(), id, in)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Job is updated", updated)
}

func (h *JobsHandler) Delete(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Job is deleted", nil)
}

func (h *JobsHandler) Apply(c fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	// A missing or unreadable part is reported by Apply as a missing resume.
	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	name, err := h.uc.Apply(c.Context(), id, u, file)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Applied to Job successfully.", name)
}

func (h *JobsHandler) Applied(c fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.uc.AppliedBy(c.Context(), u.ID)
	if err != nil {
		return err
	}
	return response.List(c, items, len(items))
}

func (h *JobsHandler) Published(c fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.uc.PublishedBy(c.Context(), u.ID)
	if err != nil {
		return err
	}
	return response.List(c, items, len(items))
}
