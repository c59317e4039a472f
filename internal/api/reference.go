package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"immoprice/server/internal/reference"
)

type ReferenceHandler struct {
	store  *reference.Store
	logger *logrus.Logger
}

func NewReferenceHandler(store *reference.Store, logger *logrus.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		store:  store,
		logger: logger,
	}
}

// SetupReferenceRoutes adds reference table routes to the router
func SetupReferenceRoutes(router *gin.Engine, store *reference.Store, logger *logrus.Logger) {
	handler := NewReferenceHandler(store, logger)

	router.GET("/api/reference", handler.GetReferenceSummary)
	router.GET("/api/reference/:postal_code", handler.GetPostalCode)
	router.POST("/api/reference/reload", handler.Reload)
}

// GetReferenceSummary describes the table currently served
func (h *ReferenceHandler) GetReferenceSummary(c *gin.Context) {
	table := h.store.Table()
	c.JSON(http.StatusOK, gin.H{
		"source":       table.Source(),
		"postal_codes": table.Len(),
		"loaded_at":    table.LoadedAt(),
		"provinces":    reference.Provinces(),
	})
}

// GetPostalCode returns the resolved reference record of one postal code
func (h *ReferenceHandler) GetPostalCode(c *gin.Context) {
	postalCode, err := strconv.Atoi(c.Param("postal_code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidZipCode})
		return
	}

	record, ok := h.store.Lookup(postalCode)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgInvalidZipCode})
		return
	}

	c.JSON(http.StatusOK, record)
}

// Reload re-reads the reference file, keeping the current table on failure
func (h *ReferenceHandler) Reload(c *gin.Context) {
	if err := h.store.Reload(); err != nil {
		h.logger.WithError(err).Error("Failed to reload reference table")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload reference table"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "Reference table reloaded",
		"postal_codes": h.store.Table().Len(),
	})
}
