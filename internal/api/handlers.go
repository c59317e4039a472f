package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"immoprice/server/config"
	"immoprice/server/internal/estimator"
	"immoprice/server/internal/features"
	"immoprice/server/internal/models"
)

// User-facing messages shown by the estimation form
const (
	msgInvalidZipCode = "Enter a valid zip code"
	msgInvalidForm    = "Please fill in the form with correct info"
)

// PredictionLog returns logged predictions
type PredictionLog interface {
	RecentPredictions(limit int) ([]models.Prediction, error)
}

// Publisher accepts predictions for asynchronous persistence
type Publisher interface {
	Push(predictions []*models.Prediction) error
}

type Handler struct {
	estimator *estimator.Service
	log       PredictionLog
	publisher Publisher
	logger    *logrus.Logger
	printer   *message.Printer
}

type EstimateResponse struct {
	ID             string             `json:"id"`
	Price          int64              `json:"price"`
	FormattedPrice string             `json:"formatted_price"`
	District       int                `json:"district"`
	Province       string             `json:"province"`
	Features       map[string]float64 `json:"features"`
}

func NewHandler(svc *estimator.Service, log PredictionLog, publisher Publisher, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		estimator: svc,
		log:       log,
		publisher: publisher,
		logger:    logger,
		printer:   message.NewPrinter(language.English),
	}
}

// FormatPrice renders a whole-euro amount the way the form displays it
func (h *Handler) FormatPrice(price int64) string {
	return h.printer.Sprintf("€%d", price)
}

func (h *Handler) Estimate(c *gin.Context) {
	var query models.PropertyQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		h.logger.WithError(err).Warn("Failed to parse estimate request")
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidForm})
		return
	}

	est, err := h.estimator.Estimate(query)
	if err != nil {
		h.writeEstimateError(c, query, err)
		return
	}

	price := est.WholePrice()
	resp := EstimateResponse{
		ID:             uuid.New().String(),
		Price:          price,
		FormattedPrice: h.FormatPrice(price),
		District:       est.Record.District,
		Province:       est.Record.Province,
		Features:       est.Vector.Map(),
	}
	h.record(resp.ID, est)

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) writeEstimateError(c *gin.Context, query models.PropertyQuery, err error) {
	var validationErr *models.ValidationError
	var lookupErr *models.LookupError

	switch {
	case errors.As(err, &validationErr):
		h.logger.WithField("field", validationErr.Field).Debug("Rejected estimate request")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": msgInvalidForm,
			"field": validationErr.Field,
			"cause": validationErr.Message,
		})
	case errors.As(err, &lookupErr):
		h.logger.WithField("postal_code", query.PostalCode).Debug("Unknown postal code")
		c.JSON(http.StatusNotFound, gin.H{"error": msgInvalidZipCode})
	default:
		h.logger.WithError(err).WithField("postal_code", query.PostalCode).Error("Failed to estimate price")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInvalidForm})
	}
}

// record queues the prediction for the log. A full queue drops it.
func (h *Handler) record(id string, est *estimator.Estimate) {
	if h.publisher == nil {
		return
	}
	condition, _ := features.ConditionValue(est.Query.BuildingCondition)
	p := &models.Prediction{
		ID:                id,
		Category:          string(est.Query.Category),
		Subtype:           est.Query.Subtype,
		PostalCode:        est.Query.PostalCode,
		District:          est.Record.District,
		Province:          est.Record.Province,
		LivingArea:        est.Query.LivingArea,
		PlotSurface:       est.Query.PlotSurface,
		BuildingCondition: condition,
		SwimmingPool:      est.Query.SwimmingPool,
		Price:             est.Price,
		CreatedAt:         time.Now(),
	}
	if err := h.publisher.Push([]*models.Prediction{p}); err != nil {
		h.logger.WithError(err).WithField("id", id).Warn("Failed to queue prediction")
	}
}

func (h *Handler) GetFormOptions(c *gin.Context) {
	c.JSON(http.StatusOK, config.GetFormOptions())
}

func (h *Handler) GetRecentPredictions(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 10
	}

	if h.log == nil {
		c.JSON(http.StatusOK, []models.Prediction{})
		return
	}

	predictions, err := h.log.RecentPredictions(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recent predictions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recent predictions"})
		return
	}
	if predictions == nil {
		predictions = []models.Prediction{}
	}

	c.JSON(http.StatusOK, predictions)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
