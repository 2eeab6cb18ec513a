package services

import (
	"errors"
	"fmt"

	"ferremas/internal/domain"
	applog "ferremas/internal/log"
	"ferremas/internal/remote"
	"ferremas/internal/repos"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCreds  = errors.New("invalid email or password")
	ErrUserTaken = errors.New("email or username already registered")
)

// AuthService owns accounts and cookie sessions. Account writes are
// local-first and mirrored to the upstream user service best-effort, the
// same way orders are.
type AuthService struct {
	Users  *repos.UserRepo
	Remote *remote.Client // nil in local-only mode
	Mirror *Mirror
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

// Register creates a USER account; the ADMIN role is only assigned through
// the admin surface.
func (s *AuthService) Register(u domain.User, password string) (string, error) {
	if _, err := s.Users.ByEmail(u.Email); err == nil {
		return "", ErrUserTaken
	}
	if _, err := s.Users.ByUsername(u.Username); err == nil {
		return "", ErrUserTaken
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	u.ID = uuid.NewString()
	u.Hash = string(h)
	u.Role = domain.RoleUser
	if err := s.Users.Insert(u); err != nil {
		return "", err
	}
	s.mirrorUser("mirror.user.create", u.ID, func(rc *remote.Client) error {
		pub := u
		pub.Hash = "" // credentials never leave this service
		return rc.CreateUser(pub)
	})
	return u.ID, nil
}

// DeleteAccount removes the user and their sessions locally, then mirrors
// the deletion upstream. Orders stay, keyed by rut, for audit.
func (s *AuthService) DeleteAccount(id string) error {
	if err := s.Users.DeleteUserCascade(id); err != nil {
		return err
	}
	s.mirrorUser("mirror.user.delete", id, func(rc *remote.Client) error {
		return rc.DeleteUser(id)
	})
	return nil
}

func (s *AuthService) mirrorUser(name, id string, fn func(*remote.Client) error) {
	if s.Remote == nil || s.Mirror == nil {
		return
	}
	rc := s.Remote
	s.Mirror.Enqueue(name, func() error {
		if err := fn(rc); err != nil {
			return fmt.Errorf("user %s (%s): %w", id, remote.Classify(err), err)
		}
		applog.Info(nil, name+".ok", map[string]any{"user_id": id})
		return nil
	})
}
