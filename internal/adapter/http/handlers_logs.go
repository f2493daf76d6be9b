package http

import (
	"errors"
	"net/http"

	"github.com/Strob0t/lightlogger/internal/adapter/http/envelope"
	"github.com/Strob0t/lightlogger/internal/domain"
	"github.com/Strob0t/lightlogger/internal/domain/event"
	"github.com/Strob0t/lightlogger/internal/domain/value"
	"github.com/Strob0t/lightlogger/internal/middleware"
	"github.com/Strob0t/lightlogger/internal/service"
)

// IngestLogs handles POST /api/v1/logs
func (h *Handlers) IngestLogs(w http.ResponseWriter, r *http.Request) {
	p := middleware.ProjectFromContext(r.Context())
	if p == nil {
		envelope.Error(w, http.StatusUnauthorized, "Invalid project token")
		return
	}

	body, ok := readValue(w, r, h.bodyLimit())
	if !ok {
		return
	}
	if body.Kind() == value.Null {
		envelope.Error(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	items, err := service.SubmissionItems(body)
	if err != nil {
		writeDomainError(w, r, err, "")
		return
	}

	res, err := h.Ingest.Ingest(r.Context(), p, items)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	if len(res.Rejected) > 0 {
		envelope.ErrorWith(w, http.StatusUnprocessableEntity, "Some logs failed validation",
			res.Rejected,
			map[string]int{"accepted": res.Accepted, "rejected": len(res.Rejected)},
		)
		return
	}
	envelope.OK(w, http.StatusOK, "Logs received successfully", map[string]any{
		"accepted": res.Accepted,
		"rejected": 0,
		"project":  p.Name,
	})
}

// QueryLogs handles GET /api/v1/logs. Events are stored outside the gateway,
// so the page is always empty; the query itself is still validated.
func (h *Handlers) QueryLogs(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q, err := service.ParseLogQuery(qs.Get("limit"), qs.Get("offset"), qs.Get("level"))
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			envelope.Error(w, http.StatusBadRequest, verr.Message)
			return
		}
		writeInternalError(w, r, err)
		return
	}
	envelope.OK(w, http.StatusOK, "Success", map[string]any{
		"logs":   []event.LogEvent{},
		"total":  0,
		"limit":  q.Limit,
		"offset": q.Offset,
		"level":  q.Level,
	})
}
