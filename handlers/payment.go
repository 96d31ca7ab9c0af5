package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"p9e.in/challan/middleware"
	"p9e.in/challan/models"
	"p9e.in/challan/utils"
)

// GetPayment returns the challan with its UPI deep-link and QR image URL.
// An already-paid challan is refused here so the payment form is never
// offered for it.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	challanID := utils.SanitizeInput(mux.Vars(r)["challanID"])

	details, err := h.violations.FindByChallanID(challanID)
	if err != nil {
		if isNotFound(err) {
			fail(w, http.StatusNotFound, "Invalid challan ID or challan not found.")
			return
		}
		log.WithError(err).Error("Payment: challan fetch failed")
		failInternal(w)
		return
	}
	if details.Status == models.StatusPaid {
		fail(w, http.StatusConflict, "This challan has already been paid.")
		return
	}

	upiLink := utils.BuildUPILink(h.cfg.UPIID, h.cfg.UPIPayeeName, details.Amount, details.ChallanID)
	ok(w, "Payment details.", map[string]interface{}{
		"challan":          details,
		"amount_formatted": utils.FormatCurrency(details.Amount),
		"upi_id":           h.cfg.UPIID,
		"upi_link":         upiLink,
		"qr_url":           utils.QRImageURL(upiLink),
	})
}

type confirmPaymentRequest struct {
	TransactionID string `json:"transaction_id"`
}

// ConfirmPayment executes the {unpaid, pending} -> paid transition. The
// write is one conditional update so status, transaction reference and
// payment timestamp land together, and a concurrent duplicate confirmation
// ends up as a conflict instead of a second success.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	challanID := utils.SanitizeInput(mux.Vars(r)["challanID"])

	var req confirmPaymentRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			fail(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			fail(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		req.TransactionID = r.PostFormValue("transaction_id")
	}

	transactionID := utils.SanitizeInput(req.TransactionID)
	if transactionID == "" {
		fail(w, http.StatusBadRequest, "Please enter the transaction ID.")
		return
	}

	updated, err := h.violations.MarkPaid(challanID, transactionID, time.Now())
	if err != nil {
		log.WithError(err).Error("Payment: confirmation update failed")
		fail(w, http.StatusInternalServerError, "Failed to process payment. Please try again.")
		return
	}
	if !updated {
		// Zero rows affected: either the challan does not exist or it is
		// already paid. Distinguish for the caller.
		exists, err := h.violations.Exists(challanID)
		if err != nil {
			log.WithError(err).Error("Payment: existence check failed")
			failInternal(w)
			return
		}
		if !exists {
			fail(w, http.StatusNotFound, "Invalid challan ID or challan not found.")
			return
		}
		fail(w, http.StatusConflict, "This challan has already been paid.")
		return
	}

	h.activity.Record(models.ActionPayment,
		fmt.Sprintf("Payment made for challan: %s, Transaction ID: %s", challanID, transactionID),
		nil, middleware.GetClientIP(r))

	http.Redirect(w, r, fmt.Sprintf("/api/v1/challans/%s/payment/success", challanID), http.StatusSeeOther)
}

// PaymentSuccess is the post-payment view: it only renders challans that
// are actually paid.
func (h *Handler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	challanID := utils.SanitizeInput(mux.Vars(r)["challanID"])

	details, err := h.violations.FindByChallanID(challanID)
	if err != nil {
		if isNotFound(err) {
			fail(w, http.StatusNotFound, "Invalid challan ID or challan not found.")
			return
		}
		log.WithError(err).Error("Payment success: challan fetch failed")
		failInternal(w)
		return
	}
	if details.Status != models.StatusPaid {
		fail(w, http.StatusConflict, "This challan has not been paid yet.")
		return
	}

	ok(w, "Payment successful.", map[string]interface{}{
		"challan":          details,
		"amount_formatted": utils.FormatCurrency(details.Amount),
	})
}
