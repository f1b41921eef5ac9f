package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"SignalSentinel/internal/cooldown"
	"SignalSentinel/internal/model"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// AliveText is the keep-alive body served on "/".
const AliveText = "🤖 SignalSentinel is alive!"

var validate = validator.New()

// Trigger runs manual cycles and reports on past ones.
type Trigger interface {
	TriggerManual(ctx context.Context, requester string) (model.CycleReport, error)
	Last() *model.CycleReport
}

// APIResponse represents standard API response.
type APIResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// CycleRequest is the body of POST /api/cycle. Requester and Source are
// informational; they do not pick the cooldown bucket.
type CycleRequest struct {
	Requester string `json:"requester" validate:"required,max=64"`
	Source    string `json:"source" default:"http" validate:"oneof=http telegram cli"`
}

// CycleResponse summarizes a finished manual cycle.
type CycleResponse struct {
	ID           string  `json:"id"`
	Trigger      string  `json:"trigger"`
	SuccessCount int     `json:"success_count"`
	ErrorCount   int     `json:"error_count"`
	SkippedCount int     `json:"skipped_count"`
	DurationSecs float64 `json:"duration_seconds"`
}

// CooldownResponse is returned with 429.
type CooldownResponse struct {
	TimeLeftSeconds int `json:"time_left_seconds"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status    string         `json:"status"`
	LastCycle *CycleResponse `json:"last_cycle,omitempty"`
	LastRunAt *time.Time     `json:"last_run_at,omitempty"`
}

type handler struct {
	trigger Trigger
	log     zerolog.Logger
}

func dataResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

func toCycleResponse(r model.CycleReport) *CycleResponse {
	return &CycleResponse{
		ID:           r.ID,
		Trigger:      string(r.Trigger),
		SuccessCount: r.SuccessCount,
		ErrorCount:   r.ErrorCount,
		SkippedCount: r.SkippedCount,
		DurationSecs: r.Duration.Seconds(),
	}
}

func (h *handler) alive(c echo.Context) error {
	return c.String(http.StatusOK, AliveText)
}

func (h *handler) health(c echo.Context) error {
	resp := HealthResponse{Status: "ok"}
	if last := h.trigger.Last(); last != nil {
		resp.LastCycle = toCycleResponse(*last)
		at := last.StartedAt
		resp.LastRunAt = &at
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *handler) runCycle(c echo.Context) error {
	req := new(CycleRequest)
	if errs := readAndValidateRequest(c, req); errs != nil {
		return dataResponse(c, http.StatusBadRequest, errs)
	}

	// The cycle outlives a client that hangs up.
	ctx := context.WithoutCancel(c.Request().Context())
	// The body names the requester for logs only; the cooldown follows the client address.
	ip := c.RealIP()
	h.log.Info().Str("requester", req.Requester).Str("source", req.Source).Str("ip", ip).Msg("manual cycle over http")
	report, err := h.trigger.TriggerManual(ctx, "http:"+ip)
	if err != nil {
		if left, ok := cooldown.Remaining(err); ok {
			c.Response().Header().Set("Retry-After", fmt.Sprint(cooldown.Seconds(left)))
			return dataResponse(c, http.StatusTooManyRequests, CooldownResponse{TimeLeftSeconds: cooldown.Seconds(left)})
		}
		return dataResponse(c, http.StatusInternalServerError, err.Error())
	}
	return dataResponse(c, http.StatusOK, toCycleResponse(report))
}

// readAndValidateRequest binds, applies defaults and validates req.
func readAndValidateRequest(c echo.Context, req interface{}) []ValidationError {
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return toValidationErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) []ValidationError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]ValidationError, 0, len(verrs))
		for _, e := range verrs {
			out = append(out, ValidationError{
				Code:    "ERR_" + strings.ToUpper(e.Tag()),
				Field:   e.Field(),
				Message: fieldMessage(e),
			})
		}
		return out
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{Code: "ERR_UNKNOWN", Message: fmt.Sprintf("%v", he.Message)}}
	}
	return []ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
	}
}
