// internal/server/server.go

// Package server exposes the lending core over HTTP. Handlers validate the
// payload, call one resolver and translate its result object; they hold no
// business logic of their own.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"lending-backend/internal/common/dynamo"
	"lending-backend/internal/common/logger"
	"lending-backend/internal/lending"
	"lending-backend/internal/notify"
)

// AccessValidator decides application access for a client.
type AccessValidator interface {
	ValidateAccess(ctx context.Context, clientID, customerID string) lending.AccessResult
}

// ClientReconciler repairs the stored msisdn against the identity switch.
type ClientReconciler interface {
	Reconcile(ctx context.Context, rawIdentifier string, isMsisdn bool, process string) lending.ReconcileResult
}

// SMSRegistrar queues outbound SMS rows.
type SMSRegistrar interface {
	RegisterClientSMS(ctx context.Context, req notify.SMSRequest) bool
}

// MovementReader lists the offer movement trail for a client.
type MovementReader interface {
	MovementsByClient(ctx context.Context, clientID string, opts ...dynamo.QueryOption) ([]dynamo.Record, error)
}

// Server wires the HTTP surface.
type Server struct {
	echo      *echo.Echo
	access    AccessValidator
	reconcile ClientReconciler
	sms       SMSRegistrar
	movements MovementReader
	logger    logger.Logger
}

func New(access AccessValidator, reconcile ClientReconciler, sms SMSRegistrar, movements MovementReader, log logger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:      e,
		access:    access,
		reconcile: reconcile,
		sms:       sms,
		movements: movements,
		logger:    log.WithFields(map[string]interface{}{"component": "http"}),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	v1 := s.echo.Group("/v1")
	v1.POST("/lending/access/validate", s.handleValidateAccess)
	v1.POST("/clients/compare", s.handleCompareClient)
	v1.POST("/notifications/sms", s.handleRegisterSMS)
	v1.GET("/clients/:clientId/movements", s.handleMovements)

	s.echo.GET("/health", s.handleHealth)
}

// Start blocks serving HTTP until the listener fails or Shutdown runs.
func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

type accessRequest struct {
	ClientID   string `json:"client_id"`
	CustomerID string `json:"customer_id"`
}

func (s *Server) handleValidateAccess(c echo.Context) error {
	var req accessRequest
	if err := decodeAndValidate(c, accessRequestSchema, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result := s.access.ValidateAccess(c.Request().Context(), req.ClientID, req.CustomerID)
	return c.JSON(http.StatusOK, result)
}

type compareRequest struct {
	Data     string `json:"data"`
	IsMsisdn *bool  `json:"is_msisdn"`
	Process  string `json:"process"`
}

func (s *Server) handleCompareClient(c echo.Context) error {
	var req compareRequest
	if err := decodeAndValidate(c, compareRequestSchema, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Identifiers longer than 7 characters are phone numbers; shorter ones
	// are external client ids. An explicit flag overrides the heuristic.
	isMsisdn := len(req.Data) > 7
	if req.IsMsisdn != nil {
		isMsisdn = *req.IsMsisdn
	}

	process := req.Process
	if process == "" {
		process = "Login"
	}

	result := s.reconcile.Reconcile(c.Request().Context(), req.Data, isMsisdn, process)
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleRegisterSMS(c echo.Context) error {
	var req notify.SMSRequest
	if err := decodeAndValidate(c, smsRequestSchema, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if !s.sms.RegisterClientSMS(c.Request().Context(), req) {
		return echo.NewHTTPError(http.StatusBadGateway, "sms registration failed")
	}
	return c.JSON(http.StatusCreated, map[string]bool{"success": true})
}

func (s *Server) handleMovements(c echo.Context) error {
	clientID := c.Param("clientId")

	rows, err := s.movements.MovementsByClient(c.Request().Context(), clientID)
	if err != nil {
		s.logger.Error("movements lookup failed", map[string]interface{}{
			"clientId": clientID,
			"error":    err,
		})
		return echo.NewHTTPError(http.StatusBadGateway, "movements lookup failed")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"movements": rows,
		"count":     len(rows),
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// decodeAndValidate reads the body once, checks it against the schema and
// decodes it into dst.
func decodeAndValidate(c echo.Context, schema map[string]interface{}, dst interface{}) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}

	var document map[string]interface{}
	if err := json.Unmarshal(payload, &document); err != nil {
		return err
	}
	if err := validatePayload(schema, document); err != nil {
		return err
	}
	return json.Unmarshal(payload, dst)
}
