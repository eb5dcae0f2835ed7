package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/pkg/jwt"
)

const secret = "secret-de-pruebas-suficientemente-largo"

func TestGenerate_RequiereTenant(t *testing.T) {
	_, err := jwt.Generate(secret, "u1", "", "admin", "lotes-api", 5)
	assert.ErrorIs(t, err, jwt.ErrMissingTenant)
	_, err = jwt.Generate(secret, "", "c1", "admin", "lotes-api", 5)
	assert.ErrorIs(t, err, jwt.ErrMissingTenant)
	_, err = jwt.Generate("", "u1", "c1", "admin", "lotes-api", 5)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}

func TestParseClaims_DevuelveTenantYRol(t *testing.T) {
	tok, err := jwt.Generate(secret, "u1", "c1", "vendedor", "lotes-api", 5)
	require.NoError(t, err)

	claims, err := jwt.ParseClaims(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "c1", claims.CompanyID)
	assert.Equal(t, "vendedor", claims.Role)
	assert.Equal(t, "lotes-api", claims.Issuer)
}

func TestParse_RechazaOtroAlgoritmo(t *testing.T) {
	claims := jwt.Claims{UserID: "u1", CompanyID: "c1", Role: "admin"}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, _, _, err = jwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestParse_RechazaTokenSinEmpresa(t *testing.T) {
	claims := jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Minute))},
		UserID:           "u1",
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, _, _, err = jwt.Parse(secret, tok)
	assert.ErrorIs(t, err, jwt.ErrMissingTenant)
}
