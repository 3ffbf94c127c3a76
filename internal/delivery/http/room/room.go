package http_room

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/kinoswap/matchroom/internal/delivery/http/common"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	usecase_room "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/room"
	usecase_swipe "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/swipe"
)

type Controller struct {
	rooms  *usecase_room.Usecase
	swipes *usecase_swipe.Usecase
	logger *slog.Logger
}

func New(rooms *usecase_room.Usecase, swipes *usecase_swipe.Usecase) *Controller {
	return &Controller{
		rooms:  rooms,
		swipes: swipes,
		logger: slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms")
	{
		rooms.POST("", c.create)
		rooms.POST("/solo", c.createSolo)
		rooms.POST("/:code/join", c.join)
		rooms.GET("/:code/status", c.status)
		rooms.POST("/:code/slots/:slot/identity", c.refreshIdentity)
	}
}

// TicketResponseDTO DTO места в комнате
type TicketResponseDTO struct {
	Code     string `json:"code" example:"K7QX2M"`
	Pin      string `json:"pin,omitempty" example:"0417"`
	PoolSeed int64  `json:"pool_seed" example:"918273"`
	Slot     string `json:"slot" example:"A"`
	Mode     string `json:"mode" example:"pair"`
}

func ticketDTO(t model.Ticket) TicketResponseDTO {
	return TicketResponseDTO{
		Code:     string(t.Code),
		Pin:      t.Pin,
		PoolSeed: t.PoolSeed,
		Slot:     string(t.Slot),
		Mode:     string(t.Mode),
	}
}

// Create создает комнату на двоих
// @Summary Создание комнаты
// @Description Создает комнату на двоих, создатель занимает слот A
// @Tags Rooms
// @Produce json
// @Success 201 {object} TicketResponseDTO "Комната успешно создана"
// @Header 201 {string} X-user-token "Токен пользователя"
// @Failure 500 {object} http_common.ErrorResponse "Внутренняя ошибка сервера"
// @Failure 503 {object} http_common.ErrorResponse "Ресурс недоступен"
// @Router /rooms [post]
func (c *Controller) create(ctx *gin.Context) {
	ticket, err := c.rooms.CreateRoom(ctx, http_common.Identity(ctx))
	if err != nil {
		c.logger.Error("failed to create room", slog.String("error", err.Error()))
		http_common.Abort(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, ticketDTO(ticket))
}

// SoloRequestDTO DTO для одиночной комнаты
type SoloRequestDTO struct {
	Seed *int64 `json:"seed" example:"42"`
}

// CreateSolo создает одиночную комнату
// @Summary Одиночный режим
// @Description Создает комнату на одного, она сразу активна. Без seed выбирается случайный
// @Tags Rooms
// @Accept json
// @Produce json
// @Param request body SoloRequestDTO false "Seed пула"
// @Success 201 {object} TicketResponseDTO "Комната успешно создана"
// @Header 201 {string} X-user-token "Токен пользователя"
// @Failure 400 {object} http_common.ErrorResponse "Неверный формат запроса"
// @Failure 500 {object} http_common.ErrorResponse "Внутренняя ошибка сервера"
// @Router /rooms/solo [post]
func (c *Controller) createSolo(ctx *gin.Context) {
	var req SoloRequestDTO
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			http_common.BadRequest(ctx, "invalid request format")
			return
		}
	}

	ticket, err := c.rooms.CreateSolo(ctx, http_common.Identity(ctx), req.Seed)
	if err != nil {
		c.logger.Error("failed to create solo room", slog.String("error", err.Error()))
		http_common.Abort(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, ticketDTO(ticket))
}

// JoinRequestDTO DTO для входа в комнату
type JoinRequestDTO struct {
	Pin string `json:"pin" binding:"required" example:"0417"`
}

// Join добавляет второго участника
// @Summary Вход в комнату
// @Description Занимает слот B. Повторный вход тем же токеном возвращает прежний слот
// @Tags Rooms
// @Accept json
// @Produce json
// @Param code path string true "Код комнаты"
// @Param request body JoinRequestDTO true "PIN комнаты"
// @Success 200 {object} TicketResponseDTO "Место в комнате"
// @Failure 400 {object} http_common.ErrorResponse "Неверный формат запроса"
// @Failure 403 {object} http_common.ErrorResponse "Неверный PIN"
// @Failure 404 {object} http_common.ErrorResponse "Комната не найдена"
// @Failure 409 {object} http_common.ErrorResponse "Комната заполнена"
// @Failure 410 {object} http_common.ErrorResponse "Комната истекла"
// @Router /rooms/{code}/join [post]
func (c *Controller) join(ctx *gin.Context) {
	var req JoinRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		http_common.BadRequest(ctx, "invalid request format")
		return
	}

	ticket, err := c.rooms.Join(ctx, model.RoomCode(ctx.Param("code")), req.Pin, http_common.Identity(ctx))
	if err != nil {
		c.logger.Warn("failed to join room",
			slog.String("code", ctx.Param("code")),
			slog.String("error", err.Error()))
		http_common.Abort(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, ticketDTO(ticket))
}

type SlotStatusDTO struct {
	Occupied      bool `json:"occupied"`
	Connected     bool `json:"connected"`
	Authenticated bool `json:"authenticated"`
	Swiped        int  `json:"swiped"`
}

// StatusResponseDTO DTO статуса комнаты
type StatusResponseDTO struct {
	Code         string                   `json:"code"`
	Mode         string                   `json:"mode" enums:"pair,solo"`
	Status       string                   `json:"status" enums:"waiting,active,matched,expired"`
	MatchedTitle int64                    `json:"matched_title,omitempty"`
	Slots        map[string]SlotStatusDTO `json:"slots"`
}

// Status возвращает статус комнаты
// @Summary Получение статуса комнаты
// @Description Возвращает статус комнаты и состояние слотов
// @Tags Rooms
// @Produce json
// @Param code path string true "Код комнаты"
// @Success 200 {object} StatusResponseDTO "Статус комнаты"
// @Failure 404 {object} http_common.ErrorResponse "Комната не найдена"
// @Failure 500 {object} http_common.ErrorResponse "Внутренняя ошибка сервера"
// @Router /rooms/{code}/status [get]
func (c *Controller) status(ctx *gin.Context) {
	view, err := c.rooms.Status(ctx, model.RoomCode(ctx.Param("code")))
	if err != nil {
		http_common.Abort(ctx, err)
		return
	}

	slots := make(map[string]SlotStatusDTO, len(view.Slots))
	for slot, seat := range view.Slots {
		slots[string(slot)] = SlotStatusDTO{
			Occupied:      seat.Occupied,
			Connected:     seat.Connected,
			Authenticated: seat.Authenticated,
			Swiped:        seat.Swiped,
		}
	}

	ctx.JSON(http.StatusOK, StatusResponseDTO{
		Code:         string(view.Code),
		Mode:         string(view.Mode),
		Status:       string(view.Status),
		MatchedTitle: int64(view.MatchedTitle),
		Slots:        slots,
	})
}

// RefreshIdentity обновляет данные пользователя в слоте
// @Summary Обновление идентичности
// @Description Вызывается после входа в аккаунт посреди сессии. Партнер получает partner_auth_changed
// @Tags Rooms
// @Param code path string true "Код комнаты"
// @Param slot path string true "Слот" Enums(A, B)
// @Success 204 "Идентичность обновлена"
// @Failure 400 {object} http_common.ErrorResponse "Неверный слот"
// @Failure 403 {object} http_common.ErrorResponse "Слот принадлежит другому пользователю"
// @Failure 404 {object} http_common.ErrorResponse "Комната не найдена"
// @Security UserToken
// @Router /rooms/{code}/slots/{slot}/identity [post]
func (c *Controller) refreshIdentity(ctx *gin.Context) {
	slot, err := model.ParseSlot(ctx.Param("slot"))
	if err != nil {
		http_common.BadRequest(ctx, "invalid slot")
		return
	}

	code := usecase_room.NormalizeCode(model.RoomCode(ctx.Param("code")))
	if err := c.swipes.NotifyIdentityChanged(ctx, code, slot, http_common.Identity(ctx)); err != nil {
		http_common.Abort(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
