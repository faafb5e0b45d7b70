// Package api exposes the reservation lifecycle over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ticket-selling/internal/logger"
	"ticket-selling/internal/models"
	"ticket-selling/internal/qr"
	"ticket-selling/internal/sse"
	"ticket-selling/internal/utils"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	// maxPage keeps page*limit inside a 32-bit offset for every allowed limit.
	maxPage = math.MaxInt32 / maxPageLimit
)

type LifecycleService interface {
	Reserve(ctx context.Context, req models.ReservationRequest) (*models.ReserveResponse, error)
	ConfirmOrExpire(ctx context.Context, paymentID int64) error
	Cancel(ctx context.Context, paymentID int64) error
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	ListReservations(ctx context.Context, page, limit int) ([]models.ReservationSummary, error)
}

type Handler struct {
	Service LifecycleService
	QR      *qr.Generator
	Logger  *logger.Logger
	// Events is optional; without it the event stream is not mounted.
	Events  *sse.Emitter
	// APIPath and AppURL build the payment links handed to buyers.
	APIPath string
	AppURL  string
}

// ReservationCreated is the body of a successful reservation.
type ReservationCreated struct {
	ReservationID int64  `json:"reservation_id"`
	TicketID      int64  `json:"ticket_id"`
	TotalPrice    int64  `json:"total_price"`
	PaymentID     int64  `json:"payment_id"`
	PaymentURL    string `json:"payment_url"`
}

func (h *Handler) paymentURL(paymentID int64) string {
	return fmt.Sprintf("%s/%s/payments/%d", h.AppURL, h.APIPath, paymentID)
}

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req models.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body: "+err.Error(), kindInvalidRequest))
		return
	}
	if req.UserID <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("user_id must be a positive id", kindInvalidRequest))
		return
	}

	resp, err := h.Service.Reserve(r.Context(), req)
	if err != nil {
		h.writeError(w, "Could not create reservation", err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Reservation created", ReservationCreated{
		ReservationID: resp.ReservationID,
		TicketID:      resp.TicketID,
		TotalPrice:    resp.TotalPrice,
		PaymentID:     resp.PaymentID,
		PaymentURL:    h.paymentURL(resp.PaymentID),
	}))
}

func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 0)
	if err != nil || page < 0 || page > maxPage {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(fmt.Sprintf("page must be between 0 and %d", maxPage), kindInvalidRequest))
		return
	}
	limit, err := queryInt(r, "limit", defaultPageLimit)
	if err != nil || limit < 1 || limit > maxPageLimit {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(fmt.Sprintf("limit must be between 1 and %d", maxPageLimit), kindInvalidRequest))
		return
	}

	list, err := h.Service.ListReservations(r.Context(), page, limit)
	if err != nil {
		h.writeError(w, "Could not list reservations", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Reservations", list))
}

// ConfirmPayment settles the payment, or expires the reservation when it
// arrives past the deadline.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	if err := h.Service.ConfirmOrExpire(r.Context(), id); err != nil {
		h.writeError(w, "Could not confirm payment", err)
		return
	}
	h.writePayment(w, r, id, "Payment completed")
}

func (h *Handler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Cancel(r.Context(), id); err != nil {
		h.writeError(w, "Could not cancel payment", err)
		return
	}
	h.writePayment(w, r, id, "Payment cancelled")
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}
	h.writePayment(w, r, id, "Payment")
}

// PaymentQR renders the payment link as a PNG.
func (h *Handler) PaymentQR(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}
	if _, err := h.Service.GetPayment(r.Context(), id); err != nil {
		h.writeError(w, "Could not render payment code", err)
		return
	}

	png, err := h.QR.PNG(h.paymentURL(id))
	if err != nil {
		h.writeError(w, "Could not render payment code", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", nil))
}

func (h *Handler) writePayment(w http.ResponseWriter, r *http.Request, id int64, message string) {
	p, err := h.Service.GetPayment(r.Context(), id)
	if err != nil {
		h.writeError(w, "Could not load payment", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse(message, p))
}

func (h *Handler) paymentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("payment id must be a positive integer", kindInvalidRequest))
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, message string, err error) {
	status, kind := classify(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("API", fmt.Sprintf("%s: %v", message, err))
		utils.WriteJSON(w, status, utils.ErrorResponse(message, kind))
		return
	}
	utils.WriteJSON(w, status, utils.ErrorResponse(fmt.Sprintf("%s: %v", message, err), kind))
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
