package auth

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"jobboard/internal/apperror"
	"jobboard/internal/domain/user"
	"jobboard/internal/infrastructure/mailer"
	"jobboard/internal/logging"
	"jobboard/internal/pkg/credential"
	"jobboard/internal/pkg/jwt"
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is an issued token and the moment it stops being accepted.
type Session struct {
	User      user.User
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	users  user.Repository
	jwt    jwt.Service
	mail   mailer.Mailer
	logger logging.Logger
	now    func() time.Time
}

func NewService(users user.Repository, jwtSvc jwt.Service, mail mailer.Mailer, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{users: users, jwt: jwtSvc, mail: mail, logger: logger.With("component", "auth"), now: time.Now}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = user.RoleUser
	}

	u := user.User{
		Name:  strings.TrimSpace(in.Name),
		Email: normalizeEmail(in.Email),
		Role:  role,
	}

	errs := &apperror.ValidationErrors{}
	collect(errs, u.Validate())
	collect(errs, user.ValidatePassword(in.Password))
	if !slices.Contains(user.SelfAssignableRoles, role) && !slices.Contains(errs.Messages, "Please select correct role") {
		errs.Add("Please select correct role")
	}
	if err := errs.OrNil(); err != nil {
		return Session{}, err
	}

	hash, err := credential.HashPassword(in.Password)
	if err != nil {
		return Session{}, apperror.Internal("Internal Server Error", err)
	}
	u.PasswordHash = hash

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return Session{}, err
	}
	return s.IssueSession(created)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return Session{}, apperror.Validation("Please enter email & password")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, apperror.Authentication("Invalid Email or Password")
		}
		return Session{}, err
	}
	if !credential.VerifyPassword(in.Password, u.PasswordHash) {
		return Session{}, apperror.Authentication("Invalid Email or Password")
	}
	return s.IssueSession(u)
}

func (s *Service) IssueSession(u user.User) (Session, error) {
	token, exp, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return Session{}, err
	}
	return Session{User: sanitizeUser(u), Token: token, ExpiresAt: exp}, nil
}

// ForgotPassword stores a hashed reset token and mails the plain one inside resetURLBase.
// The token is withdrawn again when the mail cannot be sent.
func (s *Service) ForgotPassword(ctx context.Context, email, resetURLBase string) (string, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", apperror.NotFound("No user found with this email")
		}
		return "", err
	}

	tok, err := credential.NewResetToken(s.now())
	if err != nil {
		return "", apperror.Internal("Internal Server Error", err)
	}
	if err := s.users.SetResetToken(ctx, u.ID, tok.Hash, tok.ExpiresAt); err != nil {
		return "", err
	}

	link := strings.TrimRight(resetURLBase, "/") + "/" + tok.Plain
	if err := s.sendMail(ctx, mailer.PasswordReset(u.Email, link)); err != nil {
		if clearErr := s.users.ClearResetToken(ctx, u.ID); clearErr != nil {
			s.logger.Error(ctx, "reset token rollback failed", "user_id", u.ID, "error", clearErr)
		}
		s.logger.Warn(ctx, "reset email failed", "user_id", u.ID, "error", err)
		return "", apperror.WithStatus(apperror.KindUpstream, 500, "Email could not be sent", err)
	}
	return u.Email, nil
}

func (s *Service) sendMail(ctx context.Context, msg mailer.Message) error {
	if s.mail == nil {
		return mailer.ErrNotConfigured
	}
	return s.mail.Send(ctx, msg)
}

// ResetPassword consumes a reset token. The lookup decides which error the caller sees;
// the conditional update is what makes the token single-use.
func (s *Service) ResetPassword(ctx context.Context, plainToken, password, confirm string) (Session, error) {
	hashed := credential.HashResetToken(plainToken)
	if _, err := s.users.GetByResetToken(ctx, hashed, s.now()); err != nil {
		return Session{}, s.resetTokenErr(err)
	}
	if password != confirm {
		return Session{}, apperror.Validation("Password does not match")
	}
	if err := user.ValidatePassword(password); err != nil {
		return Session{}, err
	}

	hash, err := credential.HashPassword(password)
	if err != nil {
		return Session{}, apperror.Internal("Internal Server Error", err)
	}
	u, err := s.users.ConsumeResetToken(ctx, hashed, s.now(), hash)
	if err != nil {
		return Session{}, s.resetTokenErr(err)
	}
	return s.IssueSession(u)
}

func (s *Service) resetTokenErr(err error) error {
	if errors.Is(err, user.ErrNotFound) {
		return apperror.Validation("Password reset token is invalid or has been expired")
	}
	return err
}

func collect(dst *apperror.ValidationErrors, err error) {
	var ve *apperror.ValidationErrors
	if errors.As(err, &ve) {
		dst.Messages = append(dst.Messages, ve.Messages...)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = nil
	return u
}
