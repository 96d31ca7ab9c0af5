package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"p9e.in/challan/middleware"
	"p9e.in/challan/models"
	"p9e.in/challan/utils"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  adminPayload `json:"user"`
}

type adminPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// AdminLogin checks credentials against admin_users and issues a JWT.
// Wrong username and wrong password answer identically.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	username := utils.SanitizeInput(req.Username)
	// Passwords stay raw; they may legitimately contain metacharacters.
	if username == "" || req.Password == "" {
		fail(w, http.StatusBadRequest, "Username and password are required.")
		return
	}

	admin, err := h.admins.FindByUsername(username)
	if err != nil {
		if isNotFound(err) {
			fail(w, http.StatusUnauthorized, "Invalid username or password.")
			return
		}
		log.WithError(err).Error("Login: admin lookup failed")
		failInternal(w)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		fail(w, http.StatusUnauthorized, "Invalid username or password.")
		return
	}

	token, err := h.auth.GenerateToken(admin.ID.String(), admin.Username, admin.Name, admin.Role)
	if err != nil {
		log.WithError(err).Error("Login: token generation failed")
		failInternal(w)
		return
	}

	userID := admin.ID.String()
	h.activity.Record(models.ActionLogin,
		fmt.Sprintf("Admin user login: %s", admin.Username),
		&userID, middleware.GetClientIP(r))

	ok(w, "Login successful.", loginResponse{
		Token: token,
		User: adminPayload{
			ID:       admin.ID.String(),
			Username: admin.Username,
			Name:     admin.Name,
			Role:     admin.Role,
		},
	})
}
