package http_swagger

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Controller struct {
	docURL string
}

// New serves swagger UI; docURL points it at a spec other than the default doc.json.
func New(docURL string) *Controller {
	return &Controller{docURL: docURL}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	opts := []func(*ginSwagger.Config){ginSwagger.DocExpansion("none")}
	if c.docURL != "" {
		opts = append(opts, ginSwagger.URL(c.docURL))
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, opts...))
}
