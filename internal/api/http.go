package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kenkohealth/kenko/internal/config"
	"github.com/kenkohealth/kenko/internal/models"
	"github.com/kenkohealth/kenko/internal/services"
	"github.com/kenkohealth/kenko/internal/utils"
)

// Predictor is the service behaviour the transports depend on.
type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest) (models.Prediction, error)
	Summary() (models.ModelSummary, error)
}

// NewRouter registers the HTTP routes on a fresh gin engine.
func NewRouter(logger *slog.Logger, predictor Predictor, allowedOrigin string) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{logger: logger, predictor: predictor}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(logger), cors(allowedOrigin))

	r.GET("/healthz", h.health)
	v1 := r.Group("/api/v1")
	v1.POST("/predict", h.predict)
	v1.GET("/symptoms", h.symptoms)
	v1.GET("/diseases", h.diseases)
	return r
}

type handlers struct {
	logger    *slog.Logger
	predictor Predictor
}

func (h *handlers) predict(c *gin.Context) {
	var body PredictBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pred, err := h.predictor.Predict(c.Request.Context(), FromPredictBody(body, c.GetString(requestIDKey)))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, []string{pred.Disease})
}

func (h *handlers) symptoms(c *gin.Context) {
	summary, err := h.predictor.Summary()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symptoms": summary.Symptoms, "arity": summary.Arity})
}

func (h *handlers) diseases(c *gin.Context) {
	summary, err := h.predictor.Summary()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"diseases": summary.Diseases})
}

func (h *handlers) health(c *gin.Context) {
	if _, err := h.predictor.Summary(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "NOT_SERVING"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "SERVING"})
}

func writeError(c *gin.Context, err error) {
	resp := gin.H{"error": utils.MessageOf(err)}
	if token, ok := services.UnknownSymptom(err); ok {
		resp["symptom"] = token
	}
	c.JSON(httpStatus(utils.KindOf(err)), resp)
}

func httpStatus(kind utils.Kind) int {
	switch kind {
	case utils.KindInvalid:
		return http.StatusBadRequest
	case utils.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HTTPServer wraps net/http around the gin router.
type HTTPServer struct {
	srv      *http.Server
	listener net.Listener
}

// NewHTTPServer binds the configured HTTP address.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) (*HTTPServer, error) {
	lis, err := net.Listen("tcp", cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddress, err)
	}
	return &HTTPServer{
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      15 * time.Second,
		},
		listener: lis,
	}, nil
}

// Start serves until Shutdown; a clean shutdown returns nil.
func (s *HTTPServer) Start() error {
	if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Close releases the listener of a server that never started.
func (s *HTTPServer) Close() error {
	return s.listener.Close()
}

// Address exposes the bound listener address (useful for tests).
func (s *HTTPServer) Address() string {
	return s.listener.Addr().String()
}
