package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"jobboard/internal/pkg/response"
	authuc "jobboard/internal/usecase/auth"
)

type AuthUsecase interface {
	Register(ctx context.Context, in authuc.RegisterInput) (authuc.Session, error)
	Login(ctx context.Context, in authuc.LoginInput) (authuc.Session, error)
	ForgotPassword(ctx context.Context, email, resetURLBase string) (string, error)
	ResetPassword(ctx context.Context, token, password, confirm string) (authuc.Session, error)
}

type AuthHandler struct {
	uc      AuthUsecase
	session *SessionWriter
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func NewAuthHandler(uc AuthUsecase, session *SessionWriter) *AuthHandler {
	return &AuthHandler{uc: uc, session: session}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Post("/password/forgot", h.ForgotPassword)
	r.Put("/password/reset/:token", h.ResetPassword)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req authuc.RegisterInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	sess, err := h.uc.Register(c.Context(), req)
	if err != nil {
		return err
	}
	return h.session.Send(c, sess)
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req authuc.LoginInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	sess, err := h.uc.Login(c.Context(), req)
	if err != nil {
		return err
	}
	return h.session.Send(c, sess)
}

func (h *AuthHandler) Logout(c fiber.Ctx) error {
	h.session.Clear(c)
	return response.Success(c, fiber.StatusOK, "Logged out successfully.", nil)
}

func (h *AuthHandler) ForgotPassword(c fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	base := c.Protocol() + "://" + c.Host() + "/api/v1/password/reset"
	sentTo, err := h.uc.ForgotPassword(c.Context(), req.Email, base)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Email sent to: "+sentTo, nil)
}

func (h *AuthHandler) ResetPassword(c fiber.Ctx) error {
	var req resetPasswordRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	sess, err := h.uc.ResetPassword(c.Context(), c.Params("token"), req.Password, req.ConfirmPassword)
	if err != nil {
		return err
	}
	return h.session.Send(c, sess)
}
