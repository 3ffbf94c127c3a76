package http_queue

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/kinoswap/matchroom/internal/delivery/http/common"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	"github.com/humanbelnik/kinoswap/matchroom/internal/protocol"
	usecase_queue "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/queue"
	usecase_room "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/room"
)

type Controller struct {
	uc     *usecase_queue.Usecase
	logger *slog.Logger
}

func New(uc *usecase_queue.Usecase) *Controller {
	return &Controller{
		uc:     uc,
		logger: slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/rooms/:code/slots/:slot/queue", c.fetch)
}

// QueueQueryDTO параметры страницы очереди
type QueueQueryDTO struct {
	Limit  int `form:"limit" binding:"omitempty,min=0" example:"20"`
	Offset int `form:"offset" binding:"omitempty,min=0" example:"0"`
}

// Fetch возвращает страницу очереди кандидатов
// @Summary Очередь кандидатов
// @Description offset=0 строит начальную страницу с приоритетом из списка партнера, иначе продолжает базовый обход
// @Tags Queue
// @Produce json
// @Param code path string true "Код комнаты"
// @Param slot path string true "Слот" Enums(A, B)
// @Param limit query int false "Размер страницы"
// @Param offset query int false "meta.nextOffset предыдущей страницы"
// @Success 200 {object} protocol.QueuePage "Страница очереди"
// @Failure 400 {object} http_common.ErrorResponse "Неверные параметры"
// @Failure 403 {object} http_common.ErrorResponse "Слот принадлежит другому пользователю"
// @Failure 404 {object} http_common.ErrorResponse "Комната не найдена"
// @Failure 410 {object} http_common.ErrorResponse "Комната истекла"
// @Security UserToken
// @Router /rooms/{code}/slots/{slot}/queue [get]
func (c *Controller) fetch(ctx *gin.Context) {
	slot, err := model.ParseSlot(ctx.Param("slot"))
	if err != nil {
		http_common.BadRequest(ctx, "invalid slot")
		return
	}

	var q QueueQueryDTO
	if err := ctx.ShouldBindQuery(&q); err != nil {
		http_common.BadRequest(ctx, "invalid pagination")
		return
	}

	code := usecase_room.NormalizeCode(model.RoomCode(ctx.Param("code")))
	page, err := c.uc.Fetch(ctx, code, slot, http_common.Identity(ctx), q.Limit, q.Offset)
	if err != nil {
		c.logger.Warn("queue fetch failed",
			slog.String("code", string(code)),
			slog.String("error", err.Error()))
		http_common.Abort(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, protocol.QueuePageFromDomain(page))
}
