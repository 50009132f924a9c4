package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Storage     string `json:"storage"`
	Galleries   int    `json:"galleries"`
}

func (h HandlerSet) Health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		Environment: h.cfg.Environment,
		Storage:     h.cfg.Storage.Driver,
		Galleries:   len(h.registry.Keys()),
	})
}
