package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"resumePreview/internal/auth"
	"resumePreview/internal/config"
)

func TestRegisterAndLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authService := newTestAuthService(t)
	limits := config.LimitsConfig{LoginRateLimitPerHour: 5, LoginLockThreshold: 3}
	h := NewAuthHandler(newTestDB(t), authService, newUnreachableRedis(t), discardLogger(), limits, "")

	r := gin.New()
	r.POST("/v1/auth/register", h.Register)
	r.POST("/v1/auth/login", h.Login)

	creds := gin.H{"username": "ada", "password": "correct-horse"}
	if w := doJSON(t, r, http.MethodPost, "/v1/auth/register", creds); w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/auth/register", creds); w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409 got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/auth/register", gin.H{"username": "bo", "password": "x"}); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid register: expected 400 got %d", w.Code)
	}

	w := doJSON(t, r, http.MethodPost, "/v1/auth/login", creds)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp tokenResponse
	decodeBody(t, w, &resp)
	claims, err := authService.ValidateToken(resp.AccessToken)
	if err != nil || claims.TokenType != auth.TokenTypeAccess {
		t.Fatalf("access token invalid: %v %+v", err, claims)
	}
	if len(w.Result().Cookies()) == 0 {
		t.Fatal("refresh cookie expected")
	}

	if w := doJSON(t, r, http.MethodPost, "/v1/auth/login", gin.H{"username": "ada", "password": "wrong-password"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401 got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/auth/login", gin.H{"username": "nobody", "password": "whatever1"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: expected 401 got %d", w.Code)
	}
}
