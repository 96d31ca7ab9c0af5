package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"
	"p9e.in/challan/config"
	"p9e.in/challan/middleware"
	"p9e.in/challan/models"
	"p9e.in/challan/pkg/mailer"
	"p9e.in/challan/pkg/tasks"
	"p9e.in/challan/utils"
)

// Handler carries every dependency the HTTP layer needs. Repositories,
// mailer and task runner are injected so nothing reaches for globals.
type Handler struct {
	cfg        *config.Config
	auth       *middleware.Auth
	violations *models.ViolationRepo
	owners     *models.OwnerRepo
	admins     *models.AdminRepo
	activity   *models.ActivityRepo
	mail       *mailer.Mailer
	tasks      *tasks.Runner
	zones      *utils.ZoneSet
}

func New(cfg *config.Config, db *gorm.DB, auth *middleware.Auth, mail *mailer.Mailer, runner *tasks.Runner, zones *utils.ZoneSet) *Handler {
	return &Handler{
		cfg:        cfg,
		auth:       auth,
		violations: models.NewViolationRepo(db),
		owners:     models.NewOwnerRepo(db),
		admins:     models.NewAdminRepo(db),
		activity:   models.NewActivityRepo(db),
		mail:       mail,
		tasks:      runner,
		zones:      zones,
	}
}

// Auth exposes the injected auth middleware for route registration.
func (h *Handler) Auth() *middleware.Auth {
	return h.auth
}

// apiResponse is the envelope every JSON endpoint answers with, matching
// what the camera system and the front end expect.
type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func ok(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: message, Data: data})
}

func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Success: false, Message: message})
}

// failInternal hides the store error behind a generic retryable message;
// the caller is expected to have logged the detail already.
func failInternal(w http.ResponseWriter) {
	fail(w, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
