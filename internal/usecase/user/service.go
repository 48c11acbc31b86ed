package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"jobboard/internal/apperror"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
	"jobboard/internal/infrastructure/storage"
	"jobboard/internal/logging"
	"jobboard/internal/pkg/apifilter"
	"jobboard/internal/pkg/credential"
)

// Transactor runs fn with repositories bound to one transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(users user.Repository, jobs job.Repository) error) error
}

type Service struct {
	users  user.Repository
	tx     Transactor
	store  storage.Store
	logger logging.Logger
}

func NewService(users user.Repository, tx Transactor, store storage.Store, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{users: users, tx: tx, store: store, logger: logger.With("component", "users")}
}

// Profile is the user with the postings they published.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (user.Profile, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return user.Profile{}, err
	}
	published, err := s.users.JobsPublished(ctx, id)
	if err != nil {
		return user.Profile{}, err
	}
	return user.Profile{User: sanitizeUser(u), JobsPublished: published}, nil
}

// UpdatePassword returns the user so the caller can issue a fresh session.
func (s *Service) UpdatePassword(ctx context.Context, id uuid.UUID, current, next string) (user.User, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	if !credential.VerifyPassword(current, u.PasswordHash) {
		return user.User{}, apperror.WithStatus(apperror.KindAuthentication, http.StatusUnauthorized, "Old password is incorrect.", nil)
	}
	if err := user.ValidatePassword(next); err != nil {
		return user.User{}, err
	}

	hash, err := credential.HashPassword(next)
	if err != nil {
		return user.User{}, apperror.Internal("Internal Server Error", err)
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return user.User{}, err
	}
	return sanitizeUser(u), nil
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) (user.User, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	u.Name = strings.TrimSpace(name)
	u.Email = strings.ToLower(strings.TrimSpace(email))
	if err := u.Validate(); err != nil {
		return user.User{}, err
	}

	updated, err := s.users.UpdateProfile(ctx, id, u.Name, u.Email)
	if err != nil {
		return user.User{}, s.notFound(err)
	}
	return sanitizeUser(updated), nil
}

// Delete removes the account together with its dependent rows in one transaction: an
// employer's or admin's postings, or a job-seeker's applications. The resume files of the
// removed applications are deleted after commit, best-effort.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	u, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	var resumes []string
	err = s.tx.InTx(ctx, func(users user.Repository, jobs job.Repository) error {
		var err error
		switch u.Role {
		case user.RoleEmployer, user.RoleAdmin:
			resumes, err = jobs.DeleteByOwner(ctx, id)
		case user.RoleUser:
			resumes, err = jobs.RemoveApplicationsByUser(ctx, id)
		}
		if err != nil {
			return err
		}
		return users.Delete(ctx, id)
	})
	if err != nil {
		return s.notFound(err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", id, "role", u.Role, "resumes", len(resumes))
	s.removeResumes(ctx, resumes)
	return nil
}

func (s *Service) List(ctx context.Context, params url.Values) ([]json.RawMessage, error) {
	q, err := apifilter.Apply(s.users.Query(), params)
	if err != nil {
		return nil, err
	}
	return s.users.Find(ctx, q)
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.User{}, s.notFound(err)
	}
	return u, nil
}

func (s *Service) notFound(err error) error {
	if errors.Is(err, user.ErrNotFound) {
		return apperror.NotFound("User not found.")
	}
	return err
}

func (s *Service) removeResumes(ctx context.Context, names []string) {
	if s.store == nil {
		return
	}
	for _, name := range names {
		if err := s.store.Delete(ctx, name); err != nil {
			s.logger.Warn(ctx, "resume delete failed", "resume", name, "error", err)
		}
	}
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = nil
	return u
}
