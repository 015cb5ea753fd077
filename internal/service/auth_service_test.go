package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/validation"
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(f *fixture) *authService {
	return NewAuthService(f.users, f.tokens, "test-secret", time.Hour).(*authService)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture()
	svc := newTestAuthService(f)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: " Alice ", Email: " Alice@Gym.test ", Password: "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@gym.test", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Empty(t, user.PasswordHash)
	assert.NotEqual(t, "s3cretpass", f.user(user.ID).PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{Name: "Other", Email: "alice@gym.test", Password: "s3cretpass"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	token, loggedIn, err := svc.Login(ctx, LoginInput{Email: "ALICE@gym.test", Password: "s3cretpass"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotNil(t, loggedIn.LastActive)
	assert.NotNil(t, f.user(user.ID).LastActive)

	claims, err := svc.ParseToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestLogin_EmailWithSurroundingSpaces(t *testing.T) {
	f := newFixture()
	svc := newTestAuthService(f)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Bob", Email: " b@gym.test", Password: "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, "b@gym.test", f.user(user.ID).Email)

	_, loggedIn, err := svc.Login(ctx, LoginInput{Email: "B@gym.test ", Password: "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	// Spaces alone are still not an address.
	_, _, err = svc.Login(ctx, LoginInput{Email: "   ", Password: "s3cretpass"})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
}

func TestRegister_Invalid(t *testing.T) {
	svc := newTestAuthService(newFixture())

	_, err := svc.Register(context.Background(), RegisterInput{Name: "", Email: "nope", Password: "short"})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

func TestLogin_WrongCredentials(t *testing.T) {
	f := newFixture()
	svc := newTestAuthService(f)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@gym.test", Password: "correct-horse"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, LoginInput{Email: "bob@gym.test", Password: "wrong-horse"})
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, LoginInput{Email: "nobody@gym.test", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestLogout_RevokesToken(t *testing.T) {
	f := newFixture()
	svc := newTestAuthService(f)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "Carol", Email: "carol@gym.test", Password: "password1"})
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, LoginInput{Email: "carol@gym.test", Password: "password1"})
	require.NoError(t, err)

	claims, err := svc.ParseToken(ctx, token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims))

	_, err = svc.ParseToken(ctx, token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	assert.ErrorIs(t, svc.Logout(ctx, &Claims{}), ErrInvalidToken)
}

func TestParseToken_Rejects(t *testing.T) {
	f := newFixture()
	svc := newTestAuthService(f)
	ctx := context.Background()
	member := f.seedUser("Dan", domain.RoleUser, 0)

	expired := newTestAuthService(f)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	oldToken, err := expired.generateJWT(&member)
	require.NoError(t, err)
	_, err = svc.ParseToken(ctx, oldToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService(f.users, f.tokens, "other-secret", time.Hour).(*authService)
	forged, err := other.generateJWT(&member)
	require.NoError(t, err)
	_, err = svc.ParseToken(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: member.ID.Hex(), Role: domain.RoleAdmin})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ParseToken(ctx, unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ParseToken(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewAuthService_PanicsWithoutSecret(t *testing.T) {
	f := newFixture()
	assert.Panics(t, func() { NewAuthService(f.users, f.tokens, "", time.Hour) })
}
