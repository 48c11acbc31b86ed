package handler

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"jobboard/internal/delivery/http/middleware"
	"jobboard/internal/domain/user"
	"jobboard/internal/pkg/response"
	authuc "jobboard/internal/usecase/auth"
)

type UserUsecase interface {
	Profile(ctx context.Context, id uuid.UUID) (user.Profile, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, current, next string) (user.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) (user.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params url.Values) ([]json.RawMessage, error)
}

// SessionIssuer re-issues a token after a password change.
type SessionIssuer interface {
	IssueSession(u user.User) (authuc.Session, error)
}

type UserHandler struct {
	uc      UserUsecase
	issuer  SessionIssuer
	session *SessionWriter
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewUserHandler(uc UserUsecase, issuer SessionIssuer, session *SessionWriter) *UserHandler {
	return &UserHandler{uc: uc, issuer: issuer, session: session}
}

func (h *UserHandler) RegisterRoutes(r fiber.Router, auth *middleware.AuthMiddleware) {
	if r == nil {
		return
	}

	r.Get("/me", auth.Authenticate(), h.GetMe)
	r.Put("/password/update", auth.Authenticate(), h.UpdatePassword)
	r.Put("/me/update", auth.Authenticate(), h.UpdateMe)
	r.Delete("/me/delete", auth.Authenticate(), h.DeleteMe)

	admin := middleware.AuthorizeRoles(user.RoleAdmin)
	r.Get("/admin/users", auth.Authenticate(), admin, h.List)
	r.Delete("/admin/user/:id", auth.Authenticate(), admin, h.AdminDelete)
}

func (h *UserHandler) GetMe(c fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	prof, err := h.uc.Profile(c.Context(), u.ID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "", prof)
}

func (h *UserHandler) UpdatePassword(c fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updatePasswordRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	updated, err := h.uc.UpdatePassword(c.Context(), u.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	sess, err := h.issuer.IssueSession(updated)
	if err != nil {
		return err
	}
	return h.session.Send(c, sess)
}

func (h *UserHandler) UpdateMe(c fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	updated, err := h.uc.UpdateProfile(c.Context(), u.ID, req.Name, req.Email)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "", updated)
}

func (h *UserHandler) DeleteMe(c fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), u.ID); err != nil {
		return err
	}
	h.session.Clear(c)
	return response.Success(c, fiber.StatusOK, "Your account has been deleted.", nil)
}

func (h *UserHandler) List(c fiber.Ctx) error {
	items, err := h.uc.List(c.Context(), queryValues(c))
	if err != nil {
		return err
	}
	return response.List(c, items, len(items))
}

func (h *UserHandler) AdminDelete(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "User deleted.", nil)
}
