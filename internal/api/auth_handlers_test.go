package api

import (
	"net/http"
	"testing"

	"hamrosewa/internal/config"
	"hamrosewa/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t, config.ServerConfig{})

	me := decodeBody[sessionResponse](t, env.do(t, http.MethodGet, "/api/v1/me", nil))
	assert.False(t, me.SignedIn)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "sita@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	me = decodeBody[sessionResponse](t, env.do(t, http.MethodGet, "/api/v1/me", nil))
	require.True(t, me.SignedIn)
	assert.Equal(t, "sita@example.com", me.User.Email)

	prefs := decodeBody[models.Preferences](t, env.do(t, http.MethodGet, "/api/v1/preferences", nil))
	assert.Equal(t, "Sita", prefs.Name)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/auth/logout", nil).Code)
	me = decodeBody[sessionResponse](t, env.do(t, http.MethodGet, "/api/v1/me", nil))
	assert.False(t, me.SignedIn)
}

func TestLoginValidation(t *testing.T) {
	env := newTestEnv(t, config.ServerConfig{})

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "nope"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeBody[errorResponse](t, rec)
	assert.Contains(t, resp.Fields, "email")
	assert.Contains(t, resp.Fields, "password")

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "a@b.co", "extra": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t, config.ServerConfig{})

	form := map[string]string{
		"name":            "Hari",
		"email":           "hari@example.com",
		"password":        "secret1",
		"confirmPassword": "secret2",
		"role":            "customer",
	}
	rec := env.do(t, http.MethodPost, "/api/v1/auth/register", form)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "passwords do not match", decodeBody[errorResponse](t, rec).Fields["confirmPassword"])

	form["confirmPassword"] = "secret1"
	rec = env.do(t, http.MethodPost, "/api/v1/auth/register", form)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeBody[sessionResponse](t, rec)
	assert.Equal(t, "customer", resp.User.Role)
}

func TestLoginThrottled(t *testing.T) {
	env := newTestEnv(t, config.ServerConfig{})

	body := map[string]string{"email": "sita@example.com", "password": "secret1"}
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/auth/login", body).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodPost, "/api/v1/auth/login", body).Code)
}
