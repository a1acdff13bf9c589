// internal/api/handler/transaction.go
package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"txledger/internal/api/types"
	"txledger/internal/domain"
	"txledger/internal/service"
	"txledger/internal/util"
)

// timeLayouts are tried in order for timestamps without an explicit
// layout. Values lacking a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// TransactionHandler handles HTTP requests for the authenticated user's ledger.
type TransactionHandler struct {
	*Responder
	service         service.TransactionService
	defaultPageSize int
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(svc service.TransactionService, rp *Responder, defaultPageSize int) *TransactionHandler {
	return &TransactionHandler{
		Responder:       rp,
		service:         svc,
		defaultPageSize: defaultPageSize,
	}
}

// CreateTransactionRequest represents the request body for a new transaction.
type CreateTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Type        string           `json:"type"`
	Description *string          `json:"description"`
	Timestamp   string           `json:"timestamp"`
}

func (req CreateTransactionRequest) toInput() (domain.NewTransactionInput, error) {
	verr := util.NewValidationError()
	var in domain.NewTransactionInput

	if req.Amount == nil {
		verr.Add("amount", "is required")
	} else {
		in.Amount = *req.Amount
	}
	if t, ok := domain.ParseTransactionType(req.Type); ok {
		in.Type = t
	} else {
		verr.Add("type", "must be one of: credit, debit")
	}
	if req.Description == nil {
		verr.Add("description", "is required")
	} else {
		in.Description = *req.Description
	}
	if req.Timestamp == "" {
		verr.Add("timestamp", "is required")
	} else if ts, err := parseTime(req.Timestamp); err != nil {
		verr.Add("timestamp", "must be an ISO 8601 date-time")
	} else {
		in.Timestamp = ts
	}

	// Fields already rejected above keep their first message.
	if ve, ok := util.AsValidationError(in.Validate()); ok {
		for field, msg := range ve.Fields {
			verr.Add(field, msg)
		}
	}
	return in, verr.OrNil()
}

// Create handles recording a transaction.
// POST /transactions
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.RespondWithError(w, r, util.ErrUnauthorized)
		return
	}

	var req CreateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.RespondWithError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	transaction, err := h.service.Create(r.Context(), user.ID, in)
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusCreated, types.NewTransactionResponse(transaction))
}

// List handles the filtered, paginated listing.
// GET /transactions
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.RespondWithError(w, r, util.ErrUnauthorized)
		return
	}

	filter, page, err := h.parseListQuery(r.URL.Query())
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	result, err := h.service.List(r.Context(), user.ID, filter, page)
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, types.NewTransactionPageResponse(result))
}

// Summary handles the ledger aggregate.
// GET /transactions/summary
func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.RespondWithError(w, r, util.ErrUnauthorized)
		return
	}

	summary, err := h.service.Summary(r.Context(), user.ID)
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, types.NewSummaryResponse(summary))
}

// Get handles fetching one owned transaction.
// GET /transactions/{transactionID}
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.RespondWithError(w, r, util.ErrUnauthorized)
		return
	}

	// A malformed id is indistinguishable from an absent one.
	id, err := uuid.Parse(chi.URLParam(r, "transactionID"))
	if err != nil {
		h.RespondWithError(w, r, util.ErrNotFound)
		return
	}

	transaction, err := h.service.Get(r.Context(), id, user.ID)
	if err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, types.NewTransactionResponse(transaction))
}

// Delete handles removing one owned transaction.
// DELETE /transactions/{transactionID}
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.RespondWithError(w, r, util.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "transactionID"))
	if err != nil {
		h.RespondWithError(w, r, util.ErrNotFound)
		return
	}

	if err := h.service.Delete(r.Context(), id, user.ID); err != nil {
		h.RespondWithError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TransactionHandler) parseListQuery(q url.Values) (domain.TransactionFilter, domain.PageRequest, error) {
	verr := util.NewValidationError()
	var filter domain.TransactionFilter
	page := domain.PageRequest{Page: 1, Limit: h.defaultPageSize}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			verr.Add("page", "must be an integer")
		} else {
			page.Page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			verr.Add("limit", "must be an integer")
		} else {
			page.Limit = n
		}
	}
	if v := q.Get("type"); v != "" {
		t, ok := domain.ParseTransactionType(v)
		if !ok {
			verr.Add("type", "must be one of: credit, debit")
		} else {
			filter.Type = &t
		}
	}
	filter.StartDate = parseTimeParam(q, "start_date", verr)
	filter.EndDate = parseTimeParam(q, "end_date", verr)
	filter.MinAmount = parseAmountParam(q, "min_amount", verr)
	filter.MaxAmount = parseAmountParam(q, "max_amount", verr)

	return filter, page, verr.OrNil()
}

func parseTimeParam(q url.Values, name string, verr *util.ValidationError) *time.Time {
	v := q.Get(name)
	if v == "" {
		return nil
	}
	t, err := parseTime(v)
	if err != nil {
		verr.Add(name, "must be an ISO 8601 date or date-time")
		return nil
	}
	return &t
}

func parseAmountParam(q url.Values, name string, verr *util.ValidationError) *decimal.Decimal {
	v := q.Get(name)
	if v == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		verr.Add(name, "must be a decimal number")
		return nil
	}
	if !domain.AmountInRange(d) {
		verr.Add(name, "is out of range")
		return nil
	}
	return &d
}

// parseTime accepts RFC 3339 and the zone-less ISO 8601 forms, in UTC.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	// A '+' in a query string arrives decoded as a space.
	if i := strings.LastIndexByte(s, ' '); i > len("2006-01-02") {
		s = s[:i] + "+" + s[i+1:]
	}
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}
