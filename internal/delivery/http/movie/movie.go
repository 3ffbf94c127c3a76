package http_movie

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/kinoswap/matchroom/internal/delivery/http/common"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	"github.com/humanbelnik/kinoswap/matchroom/internal/protocol"
	usecase_movie "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/movie"
)

const defaultPageLimit = 20

// MoviesListResponseDTO DTO для списка фильмов
type MoviesListResponseDTO struct {
	Movies []protocol.Title `json:"movies"`
}

// PageQueryDTO параметры пагинации
type PageQueryDTO struct {
	Limit  int `form:"limit" binding:"omitempty,min=1" example:"20"`
	Offset int `form:"offset" binding:"omitempty,min=0" example:"0"`
}

type Controller struct {
	uc *usecase_movie.Usecase

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(uc *usecase_movie.Usecase,
	opts ...ControllerOption) *Controller {
	c := &Controller{
		uc:     uc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	movies := router.Group("/movies")
	movies.GET("", c.popular)
	movies.GET("/:movie_id", c.getMovie)
}

// Popular возвращает популярные фильмы
// @Summary Популярные фильмы
// @Description Неперсонализированная лента, когда очередь комнаты недоступна
// @Tags Movies
// @Produce json
// @Param limit query int false "Размер страницы" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} MoviesListResponseDTO "Список фильмов"
// @Failure 400 {object} http_common.ErrorResponse "Неверные параметры"
// @Failure 500 {object} http_common.ErrorResponse "Внутренняя ошибка сервера"
// @Router /movies [get]
func (c *Controller) popular(ctx *gin.Context) {
	var q PageQueryDTO
	if err := ctx.ShouldBindQuery(&q); err != nil {
		http_common.BadRequest(ctx, "invalid pagination")
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultPageLimit
	}

	mm, err := c.uc.Popular(ctx, q.Offset, q.Limit)
	if err != nil {
		c.logger.Error("failed to load popular", slog.String("error", err.Error()))
		http_common.Abort(ctx, err)
		return
	}

	movies := make([]protocol.Title, 0, len(mm))
	for _, m := range mm {
		movies = append(movies, protocol.FromDomain(m))
	}
	ctx.JSON(http.StatusOK, MoviesListResponseDTO{Movies: movies})
}

// GetMovie возвращает фильм по ID
// @Summary Получение фильма
// @Description Метаданные фильма по идентификатору каталога
// @Tags Movies
// @Produce json
// @Param movie_id path int true "ID фильма" example(603)
// @Success 200 {object} protocol.Title "Фильм"
// @Failure 400 {object} http_common.ErrorResponse "Неверный ID"
// @Failure 404 {object} http_common.ErrorResponse "Фильм не найден"
// @Failure 500 {object} http_common.ErrorResponse "Внутренняя ошибка сервера"
// @Router /movies/{movie_id} [get]
func (c *Controller) getMovie(ctx *gin.Context) {
	idParam := ctx.Param("movie_id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		c.logger.Warn("invalid movie id", slog.String("id", idParam))
		http_common.BadRequest(ctx, "invalid movie id")
		return
	}

	mm, err := c.uc.GetMovieByID(ctx, model.TitleID(id))
	if err != nil {
		http_common.Abort(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, protocol.FromDomain(mm))
}
