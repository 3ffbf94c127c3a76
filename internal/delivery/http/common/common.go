package http_common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	usecase_movie "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/movie"
	usecase_room "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/room"
)

const (
	TokenHeader = "X-user-token"
	identityKey = "identity"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// Status maps usecase errors onto HTTP codes. Unknown errors are 500 and
// their text is not leaked.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, usecase_room.ErrResourceNotFound), errors.Is(err, usecase_movie.ErrResourceNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, usecase_room.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, usecase_room.ErrRoomFull):
		return http.StatusConflict, "room is full"
	case errors.Is(err, usecase_room.ErrInvalidState):
		return http.StatusConflict, "room is not accepting this action"
	case errors.Is(err, usecase_room.ErrExpired):
		return http.StatusGone, "room expired"
	case errors.Is(err, usecase_room.ErrInvalidInput), errors.Is(err, usecase_movie.ErrInvalidInput):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, usecase_room.ErrRoomsUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func Abort(ctx *gin.Context, err error) {
	status, msg := Status(err)
	ctx.AbortWithStatusJSON(status, ErrorResponse{Message: msg})
}

func BadRequest(ctx *gin.Context, msg string) {
	ctx.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Message: msg})
}

func SetIdentity(ctx *gin.Context, identity model.Identity) {
	ctx.Set(identityKey, identity)
}

// Identity is set by the identity middleware on every API route.
func Identity(ctx *gin.Context) model.Identity {
	v, ok := ctx.Get(identityKey)
	if !ok {
		return model.Identity{}
	}
	identity, _ := v.(model.Identity)
	return identity
}
