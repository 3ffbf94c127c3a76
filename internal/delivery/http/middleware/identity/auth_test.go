package http_identity_middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/humanbelnik/kinoswap/matchroom/internal/delivery/http/common"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	"github.com/stretchr/testify/assert"
)

type resolverFunc func(token string) (model.Identity, error)

func (f resolverFunc) Resolve(token string) (model.Identity, error) { return f(token) }

func serve(t *testing.T, resolver Resolver, req *http.Request) (model.Identity, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var seen model.Identity
	r := gin.New()
	r.Use(New(resolver).Identify())
	r.GET("/probe", func(ctx *gin.Context) {
		seen = http_common.Identity(ctx)
		ctx.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return seen, w
}

func TestIssuesTokenWhenMissing(t *testing.T) {
	resolver := resolverFunc(func(string) (model.Identity, error) {
		t.Fatal("resolver must not be called without a token")
		return model.Identity{}, nil
	})

	identity, w := serve(t, resolver, httptest.NewRequest(http.MethodGet, "/probe", nil))

	issued := w.Header().Get(http_common.TokenHeader)
	assert.NotEmpty(t, issued)
	assert.Equal(t, issued, identity.Token)
	assert.False(t, identity.Authenticated())
}

func TestResolvesHeaderToken(t *testing.T) {
	userID := uuid.New()
	resolver := resolverFunc(func(token string) (model.Identity, error) {
		return model.Identity{Token: token, UserID: userID}, nil
	})
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(http_common.TokenHeader, "tok-1")

	identity, w := serve(t, resolver, req)

	assert.Equal(t, "tok-1", identity.Token)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, "tok-1", w.Header().Get(http_common.TokenHeader))
}

func TestQueryTokenForHandshake(t *testing.T) {
	resolver := resolverFunc(func(token string) (model.Identity, error) {
		return model.Identity{Token: token}, nil
	})

	identity, _ := serve(t, resolver, httptest.NewRequest(http.MethodGet, "/probe?token=tok-q", nil))

	assert.Equal(t, "tok-q", identity.Token)
}

func TestLookupFailureStaysAnonymous(t *testing.T) {
	resolver := resolverFunc(func(token string) (model.Identity, error) {
		return model.Identity{}, errors.New("redis down")
	})
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(http_common.TokenHeader, "tok-1")

	identity, w := serve(t, resolver, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "tok-1", identity.Token)
	assert.False(t, identity.Authenticated())
}
