package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"p9e.in/challan/utils"
)

// GetChallan resolves a single challan by id, owner left-joined.
func (h *Handler) GetChallan(w http.ResponseWriter, r *http.Request) {
	challanID := utils.SanitizeInput(mux.Vars(r)["challanID"])

	details, err := h.violations.FindByChallanID(challanID)
	if err != nil {
		if isNotFound(err) {
			fail(w, http.StatusNotFound, "Invalid challan ID or challan not found.")
			return
		}
		log.WithError(err).Error("Lookup: challan fetch failed")
		failInternal(w)
		return
	}
	ok(w, "Challan found.", details)
}

// ListChallansByVehicle returns every challan for a plate, newest first.
// An unknown plate yields an empty list with a user-facing message, not an
// error.
func (h *Handler) ListChallansByVehicle(w http.ResponseWriter, r *http.Request) {
	numberplate := utils.SanitizeInput(mux.Vars(r)["numberplate"])

	challans, err := h.violations.FindByPlate(numberplate)
	if err != nil {
		log.WithError(err).Error("Lookup: plate fetch failed")
		failInternal(w)
		return
	}

	message := "Challans found."
	if len(challans) == 0 {
		message = "No challans found for the provided vehicle number."
	}
	ok(w, message, challans)
}

type lookupRequest struct {
	ChallanID     string `json:"challan_id"`
	VehicleNumber string `json:"vehicle_number"`
}

// LookupChallan backs the citizen search form. Either field may be
// supplied; challan id takes precedence when both are present.
func (h *Handler) LookupChallan(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			fail(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			fail(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		req.ChallanID = r.PostFormValue("challan_id")
		req.VehicleNumber = r.PostFormValue("vehicle_number")
	}

	req.ChallanID = utils.SanitizeInput(req.ChallanID)
	req.VehicleNumber = utils.SanitizeInput(req.VehicleNumber)

	switch {
	case req.ChallanID != "":
		details, err := h.violations.FindByChallanID(req.ChallanID)
		if err != nil {
			if isNotFound(err) {
				fail(w, http.StatusNotFound, "No challan found with the provided ID.")
				return
			}
			log.WithError(err).Error("Lookup: challan fetch failed")
			failInternal(w)
			return
		}
		ok(w, "Challan found.", details)
	case req.VehicleNumber != "":
		challans, err := h.violations.FindByPlate(req.VehicleNumber)
		if err != nil {
			log.WithError(err).Error("Lookup: plate fetch failed")
			failInternal(w)
			return
		}
		if len(challans) == 0 {
			fail(w, http.StatusNotFound, "No challans found for the provided vehicle number.")
			return
		}
		ok(w, "Challans found.", challans)
	default:
		fail(w, http.StatusBadRequest, "Please provide either a challan ID or vehicle number.")
	}
}
