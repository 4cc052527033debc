package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/accessdesk/project-access/internal/core/domain"
	"github.com/accessdesk/project-access/internal/core/ports"
)

// RequestHandler exposes the access request workflow.
type RequestHandler struct {
	service ports.RequestService
}

func NewRequestHandler(service ports.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

type createRequestRequest struct {
	ProjectID string `json:"projectId" validate:"required"`
}

type decisionRequest struct {
	Status string `json:"status" validate:"required" enums:"APPROVED,DENIED"`
}

// Create files an access request for the calling client.
//
// @Summary      Request access to a project
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        body  body      createRequestRequest  true  "Target project"
// @Success      201   {object}  requestResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /requests [post]
func (h *RequestHandler) Create(c echo.Context) error {
	var req createRequestRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	created, err := h.service.Create(c.Request().Context(), ctxSession(c), req.ProjectID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, requestResponse{messageResponse: ok("Access request created"), Request: created})
}

// Pending lists requests awaiting a decision.
//
// @Summary      Pending requests
// @Tags         requests
// @Produce      json
// @Success      200  {object}  joinedRequestsResponse
// @Failure      403  {object}  errorResponse
// @Router       /requests/pending [get]
func (h *RequestHandler) Pending(c echo.Context) error {
	requests, err := h.service.ListPending(c.Request().Context(), ctxSession(c))
	if err != nil {
		return err
	}
	msg := "Pending requests fetched"
	if len(requests) == 0 {
		msg = "No pending requests"
		requests = []*domain.JoinedRequest{}
	}
	return c.JSON(http.StatusOK, joinedRequestsResponse{messageResponse: ok(msg), Requests: requests, Count: len(requests)})
}

// Decide approves or denies a request.
//
// @Summary      Decide a request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "Request id"
// @Param        body  body      decisionRequest  true  "Decision"
// @Success      200   {object}  requestResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /requests/{id}/decision [post]
func (h *RequestHandler) Decide(c echo.Context) error {
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("invalid payload")
	}

	decided, err := h.service.Decide(c.Request().Context(), ctxSession(c), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	msg := "Request " + strings.ToLower(string(decided.Status))
	return c.JSON(http.StatusOK, requestResponse{messageResponse: ok(msg), Request: decided})
}

// Mine lists the caller's own requests.
//
// @Summary      My requests
// @Tags         requests
// @Produce      json
// @Success      200  {object}  joinedRequestsResponse
// @Failure      401  {object}  errorResponse
// @Router       /requests/my-requests [get]
func (h *RequestHandler) Mine(c echo.Context) error {
	requests, err := h.service.ListForClient(c.Request().Context(), ctxSession(c))
	if err != nil {
		return err
	}
	if requests == nil {
		requests = []*domain.JoinedRequest{}
	}
	return c.JSON(http.StatusOK, joinedRequestsResponse{
		messageResponse: ok(fetched(len(requests), "requests")),
		Requests:        requests,
		Count:           len(requests),
	})
}
