package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edutrack/edutrack/docs" // registers the swagger spec
)

// SetupSwagger serves the API docs at /swagger/index.html
func SetupSwagger(router *gin.Engine) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.DocExpansion("none"),
		ginSwagger.PersistAuthorization(true),
	))
}
