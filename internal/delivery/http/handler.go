package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/voronovmaksim88/KIS3-v3r3/docs"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/service"
)

type Handler struct {
	orders  service.Order
	imports service.Import
}

func NewHandler(orders service.Order, imports service.Import) *Handler {
	return &Handler{orders: orders, imports: imports}
}

type getAllOrdersResponse struct {
	Data []models.Order `json:"data"`
}

func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.Default()

	api := router.Group("/api")
	{
		api.GET("/orders", h.GetAllOrders)
		api.GET("/order/new-serial", h.GetNewSerial)
		api.GET("/order/:serial", h.GetOrderBySerial)
		api.POST("/order", h.CreateOrder)

		api.POST("/import", h.ImportAll)
		api.POST("/import/:entity", h.ImportEntity)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
			return
		}
		c.Status(http.StatusNotFound)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}
