package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/importer"
)

// ImportEntity
// @Summary ImportEntity
// @Description Run a single entity-type import from the legacy system
// @ID import-entity
// @Produce json
// @Param entity path string true "entity name, e.g. countries, orders, tasks"
// @Success 200 {object} importer.Result
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/import/{entity} [post]
func (h *Handler) ImportEntity(c *gin.Context) {
	name := strings.TrimSpace(c.Param("entity"))

	res, err := h.imports.ImportEntity(name)
	if err != nil {
		if errors.Is(err, importer.ErrUnknownEntity) {
			newErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	if res.Status != importer.StatusSuccess {
		c.JSON(http.StatusInternalServerError, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ImportAll
// @Summary ImportAll
// @Description Run the whole import pipeline in dependency order
// @ID import-all
// @Produce json
// @Success 200 {object} importer.RunReport
// @Router /api/import [post]
func (h *Handler) ImportAll(c *gin.Context) {
	report := h.imports.ImportAll()
	c.JSON(http.StatusOK, report)
}
