package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"p9e.in/challan/handlers"
)

// RegisterRoutes sets up all application routes.
func RegisterRoutes(h *handlers.Handler, uploadDir string) http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Camera intake (shared-secret token in the form body)
	// =====================================================
	r.HandleFunc("/api/v1/camera/violations", h.IntakeViolation).Methods("POST")

	// =====================================================
	// Citizen-facing routes (no authentication)
	// =====================================================
	r.HandleFunc("/api/v1/challans/lookup", h.LookupChallan).Methods("POST")
	r.HandleFunc("/api/v1/challans/{challanID}", h.GetChallan).Methods("GET")
	r.HandleFunc("/api/v1/challans/{challanID}/payment", h.GetPayment).Methods("GET")
	r.HandleFunc("/api/v1/challans/{challanID}/payment", h.ConfirmPayment).Methods("POST")
	r.HandleFunc("/api/v1/challans/{challanID}/payment/success", h.PaymentSuccess).Methods("GET")
	r.HandleFunc("/api/v1/challans/{challanID}/receipt", h.GetReceipt).Methods("GET")
	r.HandleFunc("/api/v1/vehicles/{numberplate}/challans", h.ListChallansByVehicle).Methods("GET")

	// Evidence images
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))),
	)

	// =====================================================
	// Admin routes (JWT-gated except login)
	// =====================================================
	r.HandleFunc("/admin/login", h.AdminLogin).Methods("POST")

	admin := r.PathPrefix("/api/v1/admin").Subrouter()
	admin.Use(h.Auth().Middleware)
	admin.HandleFunc("/dashboard", h.AdminDashboard).Methods("GET")
	admin.HandleFunc("/violations", h.AdminListViolations).Methods("GET")
	admin.HandleFunc("/violations/export", h.AdminExportViolations).Methods("GET")
	admin.HandleFunc("/activity", h.AdminActivity).Methods("GET")
	admin.HandleFunc("/owners", h.AdminListOwners).Methods("GET")
	admin.HandleFunc("/owners", h.AdminCreateOwner).Methods("POST")
	admin.HandleFunc("/owners/{numberplate}", h.AdminGetOwner).Methods("GET")
	admin.HandleFunc("/owners/{numberplate}", h.AdminUpdateOwner).Methods("PUT")

	return r
}
