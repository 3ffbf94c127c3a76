package http_identity_middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/humanbelnik/kinoswap/matchroom/internal/delivery/http/common"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
)

// Browsers can't set headers on a websocket handshake.
const tokenQuery = "token"

type Resolver interface {
	Resolve(token string) (model.Identity, error)
}

type Middleware struct {
	resolver Resolver
	logger   *slog.Logger
}

func New(
	resolver Resolver,
) *Middleware {
	return &Middleware{
		resolver: resolver,
		logger:   slog.Default(),
	}
}

// Identify never rejects a request. A client without a token gets a fresh
// one in the response header, and a failed session lookup leaves the
// caller anonymous.
func (m *Middleware) Identify() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		t := ctx.GetHeader(http_common.TokenHeader)
		if t == "" {
			t = ctx.Query(tokenQuery)
		}
		if t == "" {
			t = uuid.NewString()
			ctx.Header(http_common.TokenHeader, t)
			http_common.SetIdentity(ctx, model.Identity{Token: t})
			ctx.Next()
			return
		}

		identity, err := m.resolver.Resolve(t)
		if err != nil {
			m.logger.Error("session lookup failed, continuing anonymous", slog.String("error", err.Error()))
			identity = model.Identity{Token: t}
		}
		ctx.Header(http_common.TokenHeader, t)
		http_common.SetIdentity(ctx, identity)
		ctx.Next()
	}
}
