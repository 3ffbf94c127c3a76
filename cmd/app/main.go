package main

import (
	"github.com/humanbelnik/kinoswap/matchroom/internal/app"
	"github.com/humanbelnik/kinoswap/matchroom/internal/config"
)

// @title Matchroom API
// @version 1.0
// @description Комнаты для совместного выбора фильма свайпами
// @BasePath /api/v1
// @securityDefinitions.apikey UserToken
// @in header
// @name X-user-token
func main() {
	app.Go(config.Load())
}
