package book

import (
	"encoding/json"
	"errors"
	"io"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"

	"bookinventory/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewHTTPHandler(service *Service, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{service: service, logger: logger}
}

// Register mounts the book routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /books", h.List)
	mux.HandleFunc("POST /books", h.Create)
	mux.HandleFunc("GET /books/{id}", h.Get)
	mux.HandleFunc("PUT /books/{id}", h.Update)
	mux.HandleFunc("DELETE /books/{id}", h.Delete)
}

// List handles GET /books
// @Summary List books
// @Description List books, optionally filtered by price range and name/author substrings
// @Tags books
// @Produce json
// @Param filters query string false "JSON array of filter groups, e.g. [{\"from\":10,\"to\":25}]"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context(), filtersFromQuery(r.URL.Query()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"count": len(books)})
}

// Get handles GET /books/{id}
// @Summary Get book
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Create handles POST /books. A body with an id upserts that record.
// @Summary Create or update book
// @Tags books
// @Accept json
// @Produce json
// @Success 201 {object} httpx.SuccessResponse "created"
// @Success 200 {object} httpx.SuccessResponse "updated"
// @Failure 400 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeBody(w, r)
	if !ok {
		return
	}
	h.save(w, r, payload)
}

// Update handles PUT /books/{id}. The path id overrides any id in the body.
// @Summary Update book
// @Tags books
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /books/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeBody(w, r)
	if !ok {
		return
	}
	if obj, isObj := payload.(map[string]any); isObj && obj != nil {
		obj["id"] = r.PathValue("id")
	}
	h.save(w, r, payload)
}

func (h *HTTPHandler) save(w http.ResponseWriter, r *http.Request, payload any) {
	id, created, err := h.service.CreateOrUpdate(r.Context(), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if created {
		httpx.JSONCreated(w, r, CreatedID{ID: id})
		return
	}
	httpx.JSONSuccess(w, r, CreatedID{ID: id}, nil)
}

// Delete handles DELETE /books/{id}
// @Summary Delete book
// @Tags books
// @Param id path string true "Book ID"
// @Success 204
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

func (h *HTTPHandler) decodeBody(w http.ResponseWriter, r *http.Request) (any, bool) {
	var payload any
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&payload)
	if err == nil {
		// The body must hold exactly one JSON value.
		if err = dec.Decode(&struct{}{}); errors.Is(err, io.EOF) {
			return payload, true
		}
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
		return nil, false
	}
	httpx.JSONError(w, r, http.StatusBadRequest, string(KindInvalidPayload), "Request body must be valid JSON", nil)
	return nil, false
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *Error
	if !errors.As(err, &e) {
		h.logger.ErrorContext(r.Context(), "unexpected error", "error", err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	switch e.Kind {
	case KindNotFound:
		httpx.JSONError(w, r, http.StatusNotFound, string(e.Kind), e.Message, nil)
	case KindValidation, KindInvalidField, KindInvalidPayload:
		var details []httpx.ErrorDetail
		if e.Field != "" {
			details = []httpx.ErrorDetail{{Field: e.Field, Message: e.Message}}
		}
		httpx.JSONError(w, r, http.StatusBadRequest, string(KindValidation), e.Message, details)
	case KindInvalidID:
		httpx.JSONError(w, r, http.StatusBadRequest, string(e.Kind), e.Message, nil)
	case KindFilter, KindInvalidFilterFormat:
		var inner *Error
		message := e.Message
		if errors.As(e.Err, &inner) {
			message = fmt.Sprintf("%s: %s", e.Message, inner.Message)
		}
		httpx.JSONError(w, r, http.StatusBadRequest, string(KindFilter), message, nil)
	default:
		op := e.Op
		if op == "" {
			op = "request"
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, string(KindStorage), op+" failed", nil)
	}
}

var bracketFilterKey = regexp.MustCompile(`^filters\[(\d+)\]\[(\w+)\]$`)

// filtersFromQuery extracts the raw filter input from a query string. It
// accepts filters=<json> or the bracket form filters[0][from]=10. Bracket
// values for from/to that parse as numbers are delivered as numbers; type
// checking stays with ParseFilters.
func filtersFromQuery(q url.Values) any {
	if v, ok := q["filters"]; ok && len(v) > 0 {
		return v[0]
	}

	groups := map[int]map[string]any{}
	for key, values := range q {
		m := bracketFilterKey.FindStringSubmatch(key)
		if m == nil || len(values) == 0 {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		g := groups[idx]
		if g == nil {
			g = map[string]any{}
			groups[idx] = g
		}
		var val any = values[0]
		if m[2] == "from" || m[2] == "to" {
			if f, err := strconv.ParseFloat(values[0], 64); err == nil {
				val = f
			}
		}
		g[m[2]] = val
	}
	if len(groups) == 0 {
		return nil
	}

	indexes := make([]int, 0, len(groups))
	for idx := range groups {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	out := make([]any, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, groups[idx])
	}
	return out
}
