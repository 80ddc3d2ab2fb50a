package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type SignUpForm struct {
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"eqfield=Password"`
	Username        string `validate:"required,max=50"`
}

func (f SignUpForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	f.Username = strings.TrimSpace(f.Username)
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "ConfirmPassword":
			return ErrPasswordMismatch
		case "Username":
			if fe.Tag() == "required" {
				return ErrEmptyUsername
			}
		}
	}
	fe := verrs[0]
	return fmt.Errorf("%w: %s failed %s", ErrInvalidForm, fe.Field(), fe.Tag())
}

// Session holds the signed-in identity and gates protected views.
type Session struct {
	auth    Auth
	records Records
	log     Logger

	mu      sync.RWMutex
	current *Identity
}

func NewSession(auth Auth, records Records, log Logger) *Session {
	return &Session{auth: auth, records: records, log: defaultLogger(log)}
}

// Load asks the backend who is signed in.
func (s *Session) Load(ctx context.Context) (*Identity, error) {
	id, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	s.set(id)
	return id, nil
}

func (s *Session) set(id *Identity) {
	s.mu.Lock()
	s.current = id
	s.mu.Unlock()
}

func (s *Session) Current() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	id := *s.current
	return &id
}

func (s *Session) UserID() string {
	if id := s.Current(); id != nil {
		return id.ID
	}
	return ""
}

// Require returns the user id or ErrLoginRequired.
func (s *Session) Require() (string, error) {
	if id := s.UserID(); id != "" {
		return id, nil
	}
	return "", ErrLoginRequired
}

func (s *Session) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	id, err := s.auth.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}
	s.set(id)
	if err := s.EnsureProfile(ctx); err != nil {
		s.log.Warn("[SESSION] Could not ensure profile for %s: %v", id.ID, err)
	}
	return id, nil
}

func (s *Session) SignUp(ctx context.Context, form SignUpForm) (*Identity, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	id, err := s.auth.SignUp(ctx, strings.TrimSpace(form.Email), form.Password, Metadata{Username: strings.TrimSpace(form.Username)})
	if err != nil {
		return nil, err
	}
	s.set(id)
	if err := s.EnsureProfile(ctx); err != nil {
		s.log.Warn("[SESSION] Could not ensure profile for %s: %v", id.ID, err)
	}
	return id, nil
}

func (s *Session) SignOut(ctx context.Context) error {
	err := s.auth.SignOut(ctx)
	s.set(nil)
	return err
}

// EnsureProfile creates the public profile row for the signed-in user when
// it does not exist yet.
func (s *Session) EnsureProfile(ctx context.Context) error {
	id := s.Current()
	if id == nil {
		return ErrLoginRequired
	}
	_, err := s.records.GetProfile(ctx, id.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.records.UpsertProfile(ctx, Profile{
		ID:        id.ID,
		Username:  id.DisplayName(),
		AvatarURL: id.Metadata.AvatarURL,
	})
}

type ProfileUpdate struct {
	Username   *string
	Bio        *string
	AvatarName string
	AvatarData []byte
}

// UpdateProfile uploads a new avatar when given and saves the metadata.
func (s *Session) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Identity, error) {
	if _, err := s.Require(); err != nil {
		return nil, err
	}
	if update.Username != nil {
		name := strings.TrimSpace(*update.Username)
		if name == "" {
			return nil, ErrEmptyUsername
		}
		update.Username = &name
	}

	meta := MetadataUpdate{Username: update.Username, Bio: update.Bio}
	if len(update.AvatarData) > 0 {
		avatarURL, err := s.auth.UploadAvatar(ctx, update.AvatarName, update.AvatarData)
		if err != nil {
			return nil, fmt.Errorf("avatar upload failed: %w", err)
		}
		meta.AvatarURL = &avatarURL
	}

	id, err := s.auth.UpdateUser(ctx, meta)
	if err != nil {
		return nil, err
	}
	s.set(id)
	return id, nil
}

func (s *Session) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: email", ErrInvalidForm)
	}
	return s.auth.RequestPasswordReset(ctx, email, redirectTo)
}

// UpdatePassword sets a new password using resetToken, or the current
// session when resetToken is empty.
func (s *Session) UpdatePassword(ctx context.Context, resetToken, password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if err := validate.Var(password, "required,min=6"); err != nil {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidForm)
	}
	if resetToken == "" {
		if _, err := s.Require(); err != nil {
			return err
		}
	}
	return s.auth.UpdatePassword(ctx, resetToken, password)
}
