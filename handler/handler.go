package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/google/uuid"

	"estate-intake/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

type errorResponse struct {
	Error  string            `json:"error"`
	Reason string            `json:"reason,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

type request struct {
	http *http.Request
	body []byte
}

// param returns the value of a {name} wildcard in the matched pattern.
func (r *request) param(name string) string {
	return r.http.PathValue(name)
}

type routeFunc func(ctx context.Context, r *request) (int, any, error)

type logKey struct{}

type requestLog struct {
	logger *slog.Logger
	start  time.Time
}

// Handler serves the intake API behind API Gateway's proxy integration.
type Handler struct {
	submissions SubmissionUseCase
	limits      StateLimitUseCase
	drafts      DraftUseCase
	mux         *http.ServeMux
	proxy       *httpadapter.HandlerAdapter
	logger      *slog.Logger
}

func NewHandler(submissions SubmissionUseCase, limits StateLimitUseCase, drafts DraftUseCase) (*Handler, error) {
	if submissions == nil {
		return nil, errors.New("handler: submission use case must not be nil")
	}
	if limits == nil {
		return nil, errors.New("handler: state limit use case must not be nil")
	}
	if drafts == nil {
		return nil, errors.New("handler: draft use case must not be nil")
	}
	h := &Handler{
		submissions: submissions,
		limits:      limits,
		drafts:      drafts,
		mux:         http.NewServeMux(),
		logger:      slog.Default(),
	}
	h.routes(map[string]routeFunc{
		"GET /health": h.health,
		"GET /steps":  h.steps,

		"POST /submissions":       h.createSubmission,
		"GET /submissions":        h.listSubmissions,
		"GET /my-submissions":     h.listMySubmissions,
		"GET /submissions/{id}":   h.getSubmission,
		"PATCH /submissions/{id}": h.updateSubmission,
		"POST /classify":          h.classify,

		"GET /state-limits":         h.listStateLimits,
		"POST /state-limits":        h.createStateLimit,
		"PATCH /state-limits/{id}":  h.updateStateLimit,
		"DELETE /state-limits/{id}": h.deleteStateLimit,

		"POST /drafts":                     h.startDraft,
		"GET /drafts/{id}":                 h.getDraft,
		"POST /drafts/{id}/next":           h.submitStep,
		"POST /drafts/{id}/back":           h.backStep,
		"POST /drafts/{id}/skip-to-review": h.skipToReview,
		"POST /drafts/{id}/jump":           h.jumpToStep,
		"GET /drafts/{id}/review":          h.reviewDraft,
		"POST /drafts/{id}/submit":         h.finalizeDraft,
	})
	h.proxy = httpadapter.New(h)
	return h, nil
}

// routes registers every "METHOD /path" pattern. Each path also gets a
// method-less pattern answering 405, and "/" answers 404 for the rest.
func (h *Handler) routes(table map[string]routeFunc) {
	allowed := map[string][]string{}
	for pattern, fn := range table {
		method, path, _ := strings.Cut(pattern, " ")
		allowed[path] = append(allowed[path], method)
		h.mux.Handle(pattern, h.handle(fn))
	}
	for path, methods := range allowed {
		sort.Strings(methods)
		allow := strings.Join(methods, ", ")
		h.mux.Handle(path, h.fallback(http.StatusMethodNotAllowed, "method_not_allowed", allow))
	}
	h.mux.Handle("/", h.fallback(http.StatusNotFound, "route_not_found", ""))
}

// Handle dispatches one API Gateway proxy event through the HTTP router.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return h.rejectEvent(ctx, event, badRequest("invalid_body_encoding", err))
		}
		event.Body = string(decoded)
		event.IsBase64Encoded = false
	}
	return h.proxy.ProxyWithContext(ctx, event)
}

// ServeHTTP tags the request with a correlation id and routes it.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	correlationID := strings.TrimSpace(r.Header.Get(correlationHeader))
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	w.Header().Set(correlationHeader, correlationID)
	rl := requestLog{
		logger: h.logger.With("correlation_id", correlationID, "method", r.Method, "path", r.URL.Path),
		start:  time.Now(),
	}
	h.mux.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), logKey{}, rl)))
}

func (h *Handler) handle(fn routeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			h.respond(w, r, 0, nil, badRequest("unreadable_body", err))
			return
		}
		status, out, err := fn(r.Context(), &request{http: r, body: body})
		h.respond(w, r, status, out, err)
	}
}

func (h *Handler) fallback(status int, reason, allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow != "" {
			w.Header().Set("Allow", allow)
		}
		h.respond(w, r, status, errorResponse{Error: string(usecase.ErrorNotFound), Reason: reason}, nil)
	}
}

// rejectEvent answers an event that cannot be turned into an HTTP request.
func (h *Handler) rejectEvent(ctx context.Context, event events.APIGatewayProxyRequest, err error) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(event.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	rl := requestLog{
		logger: h.logger.With("correlation_id", correlationID, "method", event.HTTPMethod, "path", event.Path),
		start:  time.Now(),
	}
	w := core.NewProxyResponseWriter()
	w.Header().Set(correlationHeader, correlationID)
	r, rErr := http.NewRequestWithContext(context.WithValue(ctx, logKey{}, rl), event.HTTPMethod, "/", nil)
	if rErr != nil {
		return events.APIGatewayProxyResponse{}, rErr
	}
	h.respond(w, r, 0, nil, err)
	return w.GetProxyResponse()
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, body any, err error) {
	rl, ok := r.Context().Value(logKey{}).(requestLog)
	if !ok {
		rl = requestLog{logger: h.logger, start: time.Now()}
	}
	ctx := r.Context()
	if err != nil {
		status, body = errorStatus(err)
	}
	attrs := []any{"status", status, "duration_ms", time.Since(rl.start).Milliseconds()}
	switch {
	case status >= http.StatusInternalServerError:
		rl.logger.ErrorContext(ctx, "request failed", append(attrs, "err", err)...)
	case err != nil:
		rl.logger.WarnContext(ctx, "request rejected", append(attrs, "err", err)...)
	default:
		rl.logger.InfoContext(ctx, "request handled", attrs...)
	}

	if status == http.StatusNoContent || body == nil {
		w.WriteHeader(status)
		return
	}
	payload, mErr := json.Marshal(body)
	if mErr != nil {
		rl.logger.ErrorContext(ctx, "encode response", "err", mErr)
		status = http.StatusInternalServerError
		payload = []byte(`{"error":"INTERNAL_ERROR","reason":"encode_error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func errorStatus(err error) (int, errorResponse) {
	var uerr *usecase.Error
	if !errors.As(err, &uerr) {
		return http.StatusInternalServerError, errorResponse{Error: string(usecase.ErrorInternal), Reason: "unexpected_error"}
	}
	out := errorResponse{Error: string(uerr.Code), Reason: uerr.Reason, Fields: uerr.Fields}
	switch uerr.Code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest, out
	case usecase.ErrorValidationFailed:
		return http.StatusUnprocessableEntity, out
	case usecase.ErrorNotFound:
		return http.StatusNotFound, out
	case usecase.ErrorConflict:
		return http.StatusConflict, out
	default:
		return http.StatusInternalServerError, out
	}
}

func badRequest(reason string, err error) error {
	return &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: reason, Err: err}
}

// decodeBody unmarshals the request body into v. An empty body is allowed
// only when optional is set.
func decodeBody(r *request, v any, optional bool) error {
	if len(bytes.TrimSpace(r.body)) == 0 {
		if optional {
			return nil
		}
		return badRequest("empty_body", nil)
	}
	if err := json.Unmarshal(r.body, v); err != nil {
		return badRequest("invalid_json", err)
	}
	return nil
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ownerID reads the caller's subject from the API Gateway authorizer. Cognito
// user pool authorizers nest it under "claims"; Lambda authorizers put it at
// the top level.
func ownerID(r *request) string {
	gw, ok := core.GetAPIGatewayContextFromContext(r.http.Context())
	if !ok {
		return ""
	}
	auth := gw.Authorizer
	if claims, ok := auth["claims"].(map[string]any); ok {
		if sub, ok := claims["sub"].(string); ok {
			return strings.TrimSpace(sub)
		}
	}
	if sub, ok := auth["sub"].(string); ok {
		return strings.TrimSpace(sub)
	}
	return ""
}

func (h *Handler) health(context.Context, *request) (int, any, error) {
	return http.StatusOK, map[string]string{"status": "ok"}, nil
}
