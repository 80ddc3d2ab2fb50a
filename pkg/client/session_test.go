package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(store *fakeStore) (*Session, *fakeAuth) {
	backend, auth := store.backend()
	return NewSession(backend.Auth, backend.Records, quietLogger()), auth
}

func TestSignUpForm_Validate(t *testing.T) {
	tests := []struct {
		name string
		form SignUpForm
		want error
	}{
		{"ok", SignUpForm{Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret1", Username: "hanako"}, nil},
		{"mismatch", SignUpForm{Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret2", Username: "hanako"}, ErrPasswordMismatch},
		{"blank username", SignUpForm{Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret1", Username: "  "}, ErrEmptyUsername},
		{"bad email", SignUpForm{Email: "nope", Password: "secret1", ConfirmPassword: "secret1", Username: "hanako"}, ErrInvalidForm},
		{"short password", SignUpForm{Email: "a@example.com", Password: "abc", ConfirmPassword: "abc", Username: "hanako"}, ErrInvalidForm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSession_SignUpRejectedLocally(t *testing.T) {
	store := newFakeStore()
	s, _ := newTestSession(store)

	_, err := s.SignUp(context.Background(), SignUpForm{
		Email: "a@example.com", Password: "secret1", ConfirmPassword: "other", Username: "hanako",
	})

	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Zero(t, store.totalCalls())
	assert.Nil(t, s.Current())
}

func TestSession_SignUpCreatesProfile(t *testing.T) {
	store := newFakeStore()
	s, _ := newTestSession(store)

	id, err := s.SignUp(context.Background(), SignUpForm{
		Email: " hanako@example.com ", Password: "secret1", ConfirmPassword: "secret1", Username: " hanako ",
	})

	require.NoError(t, err)
	assert.Equal(t, "hanako@example.com", id.Email)
	assert.Equal(t, id.ID, s.UserID())
	profile, err := store.GetProfile(context.Background(), id.ID)
	require.NoError(t, err)
	assert.Equal(t, "hanako", profile.Username)
}

func TestSession_SignInKeepsExistingProfile(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "hanako@example.com", "hanako")
	require.NoError(t, store.UpsertProfile(context.Background(), Profile{ID: "u1", Username: "hanako", Bio: "Fixing up old houses"}))
	s, _ := newTestSession(store)

	_, err := s.SignIn(context.Background(), "hanako@example.com", "secret1")
	require.NoError(t, err)

	profile, err := store.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Fixing up old houses", profile.Bio)
	assert.Equal(t, 1, store.count("UpsertProfile"))
}

func TestSession_SignInCreatesMissingProfile(t *testing.T) {
	store := newFakeStore()
	store.users["u9"] = &Identity{ID: "u9", Email: "kenji@example.com"}
	s, _ := newTestSession(store)

	_, err := s.SignIn(context.Background(), "kenji@example.com", "secret1")
	require.NoError(t, err)

	profile, err := store.GetProfile(context.Background(), "u9")
	require.NoError(t, err)
	assert.Equal(t, "kenji", profile.Username)
}

func TestSession_SignInFailure(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1", "hanako@example.com", "hanako")
	s, _ := newTestSession(store)

	_, err := s.SignIn(context.Background(), "hanako@example.com", "wrong")

	assert.Error(t, err)
	assert.Nil(t, s.Current())
}

func TestSession_RequireAndSignOut(t *testing.T) {
	store := newFakeStore()
	ident := store.addUser("u1", "hanako@example.com", "hanako")
	s, auth := newTestSession(store)

	_, err := s.Require()
	assert.ErrorIs(t, err, ErrLoginRequired)

	auth.signInAs(ident)
	_, err = s.Load(context.Background())
	require.NoError(t, err)
	userID, err := s.Require()
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	require.NoError(t, s.SignOut(context.Background()))
	assert.Empty(t, s.UserID())
}

func TestSession_UpdateProfile(t *testing.T) {
	store := newFakeStore()
	ident := store.addUser("u1", "hanako@example.com", "hanako")
	s, auth := newTestSession(store)

	_, err := s.UpdateProfile(context.Background(), ProfileUpdate{})
	assert.ErrorIs(t, err, ErrLoginRequired)

	auth.signInAs(ident)
	_, err = s.Load(context.Background())
	require.NoError(t, err)

	blank := " "
	_, err = s.UpdateProfile(context.Background(), ProfileUpdate{Username: &blank})
	assert.ErrorIs(t, err, ErrEmptyUsername)

	name := "hanako-renovates"
	updated, err := s.UpdateProfile(context.Background(), ProfileUpdate{
		Username:   &name,
		AvatarName: "me.png",
		AvatarData: []byte{0x89, 'P', 'N', 'G'},
	})
	require.NoError(t, err)
	assert.Equal(t, "hanako-renovates", updated.Metadata.Username)
	assert.Contains(t, updated.Metadata.AvatarURL, "?v=")
	assert.Equal(t, "hanako-renovates", s.Current().Metadata.Username)
	assert.Equal(t, 1, store.count("UploadAvatar"))
}

func TestSession_PasswordReset(t *testing.T) {
	store := newFakeStore()
	s, _ := newTestSession(store)

	assert.ErrorIs(t, s.RequestPasswordReset(context.Background(), "not-an-email", ""), ErrInvalidForm)
	assert.NoError(t, s.RequestPasswordReset(context.Background(), "hanako@example.com", "http://localhost/reset"))

	assert.ErrorIs(t, s.UpdatePassword(context.Background(), "tok", "secret1", "secret2"), ErrPasswordMismatch)
	assert.ErrorIs(t, s.UpdatePassword(context.Background(), "tok", "abc", "abc"), ErrInvalidForm)
	assert.ErrorIs(t, s.UpdatePassword(context.Background(), "", "secret1", "secret1"), ErrLoginRequired)
	assert.NoError(t, s.UpdatePassword(context.Background(), "tok", "secret1", "secret1"))
	assert.Equal(t, 1, store.count("UpdatePassword"))
}

func TestIdentity_DisplayName(t *testing.T) {
	assert.Equal(t, "hanako", (&Identity{Metadata: Metadata{Username: "hanako"}}).DisplayName())
	assert.Equal(t, "taro", (&Identity{Email: "taro@example.com"}).DisplayName())
	assert.Equal(t, "user", (&Identity{}).DisplayName())
}
