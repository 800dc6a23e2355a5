package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flyerhub/internal/model"
)

func uintPtr(v uint) *uint { return &v }

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")
	user := &model.User{ID: 7, Email: "companyA@flyer.com", Role: model.RoleCompany, CompanyID: uintPtr(1)}

	id, token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.ID)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, model.RoleCompany, claims.Role)
	require.NotNil(t, claims.CompanyID)
	assert.Equal(t, uint(1), *claims.CompanyID)
	assert.WithinDuration(t, time.Now().Add(AccessTokenExpiry), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	_, token, err := NewJWTService("one").GenerateRefreshToken(1, "a@b.c")
	require.NoError(t, err)

	_, err = NewJWTService("two").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := NewJWTService("test-secret")
	past := time.Now().Add(-time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(past)},
	}).SignedString(svc.Secret())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_ValidateRefreshToken(t *testing.T) {
	svc := NewJWTService("test-secret")
	id, token, err := svc.GenerateRefreshToken(3, "admin@flyer.com")
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.ID)
	assert.Equal(t, uint(3), claims.UserID)
	assert.False(t, claims.IsAccess())

	_, err = svc.ValidateRefreshToken("garbage")
	assert.Error(t, err)
}

func TestJWTService_TokenTypesAreNotInterchangeable(t *testing.T) {
	svc := NewJWTService("test-secret")
	_, access, err := svc.GenerateAccessToken(&model.User{ID: 1, Email: "admin@flyer.com", Role: model.RoleAdmin})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.True(t, claims.IsAccess())

	_, err = svc.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestPasswordHashers(t *testing.T) {
	for _, scheme := range []string{"bcrypt", "plain"} {
		t.Run(scheme, func(t *testing.T) {
			h, err := NewPasswordHasher(scheme)
			require.NoError(t, err)

			stored, err := h.Hash("company123")
			require.NoError(t, err)

			assert.True(t, h.Verify(stored, "company123"))
			assert.False(t, h.Verify(stored, "Company123"))
			assert.False(t, h.Verify(stored, ""))
		})
	}

	_, err := NewPasswordHasher("rot13")
	assert.Error(t, err)
}

func TestBcryptHasher_Salted(t *testing.T) {
	h := BcryptHasher{Cost: 4}
	a, err := h.Hash("admin123")
	require.NoError(t, err)
	b, err := h.Hash("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, "admin123", a)
}

func TestPrincipal_Policy(t *testing.T) {
	admin := &Principal{UserID: 1, Role: model.RoleAdmin}
	companyA := &Principal{UserID: 2, Role: model.RoleCompany, CompanyID: uintPtr(1)}
	var anonymous *Principal

	assert.True(t, admin.CanUpload())
	assert.True(t, admin.CanAccessCompany(1))
	assert.True(t, admin.CanAccessCompany(2))

	assert.False(t, companyA.CanUpload())
	assert.True(t, companyA.CanAccessCompany(1))
	assert.False(t, companyA.CanAccessCompany(2))

	assert.False(t, anonymous.CanUpload())
	assert.False(t, anonymous.CanAccessCompany(1))
}
