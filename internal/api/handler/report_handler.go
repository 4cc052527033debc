package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/accessdesk/project-access/internal/core/ports"
	"github.com/accessdesk/project-access/internal/core/service"
	"github.com/accessdesk/project-access/internal/pkg/metrics"
)

// ReportHandler streams the full request history.
type ReportHandler struct {
	reports ports.ReportService
	log     zerolog.Logger
}

func NewReportHandler(reports ports.ReportService, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, log: log}
}

// Export writes every access request, newest first, as one JSON array sent
// with chunked transfer encoding. Failures before the first byte get a normal
// error response; a failure mid-stream ends the body early, leaving invalid
// JSON.
//
// @Summary      Export the access request report
// @Tags         reports
// @Produce      json
// @Success      200  {array}   domain.JoinedRequest
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /reports [get]
func (h *ReportHandler) Export(c echo.Context) error {
	ctx := c.Request().Context()

	cur, err := h.reports.Open(ctx, ctxSession(c))
	if err != nil {
		metrics.ReportExportsTotal.WithLabelValues("rejected").Inc()
		return err
	}

	res := c.Response()
	// The export outlives the server write timeout.
	if err := http.NewResponseController(res.Writer).SetWriteDeadline(time.Time{}); err != nil {
		h.log.Debug().Err(err).Msg("write deadline not adjustable")
	}

	res.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.WriteHeader(http.StatusOK)

	start := time.Now()
	n, err := service.WriteJSONArray(ctx, res, cur)
	metrics.ReportRowsStreamedTotal.Add(float64(n))
	if err != nil {
		metrics.ReportExportsTotal.WithLabelValues("truncated").Inc()
		h.log.Error().Err(err).
			Int("rows", n).
			Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
			Msg("report stream aborted")
		return nil
	}

	metrics.ReportExportsTotal.WithLabelValues("ok").Inc()
	h.log.Info().Int("rows", n).Dur("took", time.Since(start)).Msg("report exported")
	return nil
}
