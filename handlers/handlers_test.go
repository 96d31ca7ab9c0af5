package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"p9e.in/challan/config"
	"p9e.in/challan/handlers"
	"p9e.in/challan/middleware"
	"p9e.in/challan/models"
	"p9e.in/challan/pkg/mailer"
	"p9e.in/challan/pkg/tasks"
	"p9e.in/challan/routes"
)

const testCameraKey = "test-camera-key"

type testEnv struct {
	router http.Handler
	db     *gorm.DB
	cfg    *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "challan.db")), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := config.Migrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	cfg := &config.Config{
		CameraAPIKey: testCameraKey,
		UPIID:        "police@upi",
		UPIPayeeName: "Traffic Challan Payment",
		SiteURL:      "http://localhost:8080",
		UploadDir:    t.TempDir(),
	}
	auth := middleware.NewAuth("test-secret")
	runner := tasks.NewRunner(1, 8)
	t.Cleanup(runner.Close)

	h := handlers.New(cfg, db, auth, mailer.New("", ""), runner, nil)
	return &testEnv{
		router: routes.RegisterRoutes(h, cfg.UploadDir),
		db:     db,
		cfg:    cfg,
	}
}

// envelope mirrors the JSON response shape of every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) postForm(t *testing.T, path string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}
	return e.do(t, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", "")
}

func (e *testEnv) postJSON(t *testing.T, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return e.do(t, http.MethodPost, path, bytes.NewReader(body), "application/json", token)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

// intake submits a camera report and returns the generated challan id.
func (e *testEnv) intake(t *testing.T, fields map[string]string) string {
	t.Helper()
	merged := map[string]string{
		"api_key":     testCameraKey,
		"numberplate": "MH01AB1234",
		"location":    "Main St",
	}
	for k, v := range fields {
		merged[k] = v
	}
	rec := e.postForm(t, "/api/v1/camera/violations", merged)
	if rec.Code != http.StatusOK {
		t.Fatalf("intake failed: status=%d body=%s", rec.Code, rec.Body.String())
	}
	env := decode(t, rec)
	var data struct {
		ChallanID string `json:"challan_id"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode intake data: %v", err)
	}
	if data.ChallanID == "" {
		t.Fatal("intake returned empty challan id")
	}
	return data.ChallanID
}

func (e *testEnv) seedOwner(t *testing.T, plate, name, email string) {
	t.Helper()
	owner := models.VehicleOwner{Numberplate: plate, OwnerName: name, Email: email, Phone: "9876543210"}
	if err := e.db.Create(&owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
}

// seedAdmin creates an admin user and returns a login token for it.
func (e *testEnv) seedAdmin(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := models.AdminUser{Username: "admin", PasswordHash: string(hash), Name: "Test Admin", Role: models.RoleAdmin}
	if err := e.db.Create(&admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	rec := e.postJSON(t, "/admin/login", map[string]string{"username": "admin", "password": "secret123"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: status=%d body=%s", rec.Code, rec.Body.String())
	}
	env := decode(t, rec)
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if data.Token == "" {
		t.Fatal("login returned empty token")
	}
	return data.Token
}

func (e *testEnv) violationByID(t *testing.T, challanID string) *models.Violation {
	t.Helper()
	var v models.Violation
	if err := e.db.Where("challan_id = ?", challanID).First(&v).Error; err != nil {
		t.Fatalf("load violation %s: %v", challanID, err)
	}
	return &v
}

func (e *testEnv) violationCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := e.db.Model(&models.Violation{}).Count(&count).Error; err != nil {
		t.Fatalf("count violations: %v", err)
	}
	return count
}

// seedViolation inserts a row directly, bypassing the intake endpoint.
func (e *testEnv) seedViolation(t *testing.T, challanID, plate, status string, violationDate time.Time) {
	t.Helper()
	v := models.Violation{
		ChallanID:     challanID,
		Numberplate:   plate,
		ViolationDate: violationDate,
		Location:      "Test Junction",
		ViolationType: "Red Light Violation",
		Amount:        1000,
		Status:        status,
	}
	if err := e.db.Create(&v).Error; err != nil {
		t.Fatalf("seed violation: %v", err)
	}
}
