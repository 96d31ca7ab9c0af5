package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"p9e.in/challan/models"
	"p9e.in/challan/utils"
)

type ownerRequest struct {
	Numberplate string `json:"numberplate"`
	OwnerName   string `json:"owner_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

// AdminCreateOwner registers a vehicle owner record.
func (h *Handler) AdminCreateOwner(w http.ResponseWriter, r *http.Request) {
	var req ownerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	owner := models.VehicleOwner{
		Numberplate: utils.SanitizeInput(req.Numberplate),
		OwnerName:   utils.SanitizeInput(req.OwnerName),
		Email:       utils.SanitizeInput(req.Email),
		Phone:       utils.SanitizeInput(req.Phone),
		Address:     utils.SanitizeInput(req.Address),
	}
	if owner.Numberplate == "" || owner.OwnerName == "" {
		fail(w, http.StatusBadRequest, "Number plate and owner name are required.")
		return
	}

	if err := h.owners.Create(&owner); err != nil {
		if models.IsDuplicateKey(err) || strings.Contains(err.Error(), "duplicate key") {
			fail(w, http.StatusConflict, "An owner is already registered for this number plate.")
			return
		}
		log.WithError(err).Error("Admin: owner create failed")
		failInternal(w)
		return
	}
	writeJSON(w, http.StatusCreated, apiResponse{Success: true, Message: "Owner registered.", Data: owner})
}

// AdminGetOwner fetches one owner by plate.
func (h *Handler) AdminGetOwner(w http.ResponseWriter, r *http.Request) {
	numberplate := utils.SanitizeInput(mux.Vars(r)["numberplate"])

	owner, err := h.owners.FindByPlate(numberplate)
	if err != nil {
		if isNotFound(err) {
			fail(w, http.StatusNotFound, "No owner registered for this number plate.")
			return
		}
		log.WithError(err).Error("Admin: owner fetch failed")
		failInternal(w)
		return
	}
	ok(w, "Owner found.", owner)
}

// AdminUpdateOwner updates contact details for an owner. The plate itself
// is the natural key and is not changed here.
func (h *Handler) AdminUpdateOwner(w http.ResponseWriter, r *http.Request) {
	numberplate := utils.SanitizeInput(mux.Vars(r)["numberplate"])

	owner, err := h.owners.FindByPlate(numberplate)
	if err != nil {
		if isNotFound(err) {
			fail(w, http.StatusNotFound, "No owner registered for this number plate.")
			return
		}
		log.WithError(err).Error("Admin: owner fetch failed")
		failInternal(w)
		return
	}

	var req ownerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OwnerName != "" {
		owner.OwnerName = utils.SanitizeInput(req.OwnerName)
	}
	if req.Email != "" {
		owner.Email = utils.SanitizeInput(req.Email)
	}
	if req.Phone != "" {
		owner.Phone = utils.SanitizeInput(req.Phone)
	}
	if req.Address != "" {
		owner.Address = utils.SanitizeInput(req.Address)
	}

	if err := h.owners.Update(owner); err != nil {
		log.WithError(err).Error("Admin: owner update failed")
		failInternal(w)
		return
	}
	ok(w, "Owner updated.", owner)
}

// AdminListOwners pages through registered owners.
func (h *Handler) AdminListOwners(w http.ResponseWriter, r *http.Request) {
	page, limit := 1, 10
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	owners, total, err := h.owners.List(page, limit)
	if err != nil {
		log.WithError(err).Error("Admin: owners listing failed")
		failInternal(w)
		return
	}

	ok(w, "Vehicle owners.", map[string]interface{}{
		"total": total,
		"page":  page,
		"limit": limit,
		"data":  owners,
	})
}
