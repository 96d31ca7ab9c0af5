package handlers_test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestIntakeAndLookupRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	challanID := env.intake(t, map[string]string{
		"numberplate": "MH01AB1234",
		"location":    "Main St",
	})

	if matched := regexp.MustCompile(`^CHN-\d{8}-\d+-\d{4}$`).MatchString(challanID); !matched {
		t.Errorf("challan id %q does not match the declared format", challanID)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/challans/"+challanID, nil, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("lookup status = %d, body = %s", rec.Code, rec.Body.String())
	}
	envp := decode(t, rec)
	var got struct {
		ChallanID     string  `json:"challan_id"`
		Numberplate   string  `json:"numberplate"`
		Location      string  `json:"location"`
		ViolationType string  `json:"violation_type"`
		Amount        float64 `json:"amount"`
		Status        string  `json:"status"`
		OwnerName     *string `json:"owner_name"`
	}
	if err := json.Unmarshal(envp.Data, &got); err != nil {
		t.Fatalf("decode lookup data: %v", err)
	}

	if got.ChallanID != challanID || got.Numberplate != "MH01AB1234" ||
		got.Location != "Main St" || got.ViolationType != "Red Light Violation" {
		t.Errorf("lookup returned %+v, fields do not echo the intake", got)
	}
	if got.Amount != 1000 {
		t.Errorf("amount = %v, want 1000", got.Amount)
	}
	if got.Status != "unpaid" {
		t.Errorf("status = %q, want unpaid", got.Status)
	}
	// No owner registered for the plate: the record is still visible.
	if got.OwnerName != nil {
		t.Errorf("owner_name = %v, want null", *got.OwnerName)
	}
}

func TestIntakeBadAPIKeyCreatesNothing(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm(t, "/api/v1/camera/violations", map[string]string{
		"api_key":     "wrong-key",
		"numberplate": "MH01AB1234",
		"location":    "Main St",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if n := env.violationCount(t); n != 0 {
		t.Fatalf("violation count = %d, want 0", n)
	}
}

func TestIntakeValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"missing plate", map[string]string{"api_key": testCameraKey, "location": "Main St"}},
		{"missing location", map[string]string{"api_key": testCameraKey, "numberplate": "MH01AB1234"}},
		{"whitespace plate", map[string]string{"api_key": testCameraKey, "numberplate": "   ", "location": "Main St"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.postForm(t, "/api/v1/camera/violations", tt.fields)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			envp := decode(t, rec)
			if envp.Success {
				t.Fatal("validation failure must not report success")
			}
		})
	}
	if n := env.violationCount(t); n != 0 {
		t.Fatalf("violation count = %d, want 0", n)
	}
}

func TestIntakeReportsOwnerFound(t *testing.T) {
	env := newTestEnv(t)
	env.seedOwner(t, "MH02CD5678", "Priya Patel", "priya@example.com")

	rec := env.postForm(t, "/api/v1/camera/violations", map[string]string{
		"api_key":     testCameraKey,
		"numberplate": "MH02CD5678",
		"location":    "Link Road",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	envp := decode(t, rec)
	var data struct {
		OwnerFound bool `json:"owner_found"`
	}
	if err := json.Unmarshal(envp.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !data.OwnerFound {
		t.Error("owner_found = false, want true for a registered plate")
	}
	if envp.Message != "Violation recorded successfully." {
		t.Errorf("message = %q", envp.Message)
	}
}

func TestIntakeStoresEvidence(t *testing.T) {
	env := newTestEnv(t)

	image := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	encoded := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	challanID := env.intake(t, map[string]string{"image": encoded})

	stored, err := os.ReadFile(filepath.Join(env.cfg.UploadDir, "violations", challanID+".jpg"))
	if err != nil {
		t.Fatalf("evidence file missing: %v", err)
	}
	if string(stored) != string(image) {
		t.Error("stored evidence differs from the submitted image")
	}

	v := env.violationByID(t, challanID)
	if v.ImagePath == nil || *v.ImagePath != "uploads/violations/"+challanID+".jpg" {
		t.Errorf("image_path = %v, want uploads/violations/%s.jpg", v.ImagePath, challanID)
	}
}

func TestIntakeSurvivesBadEvidence(t *testing.T) {
	env := newTestEnv(t)

	// Undecodable image data must not abort the intake.
	challanID := env.intake(t, map[string]string{"image": "%%% not base64 %%%"})

	v := env.violationByID(t, challanID)
	if v.ImagePath != nil {
		t.Errorf("image_path = %q, want none for undecodable evidence", *v.ImagePath)
	}
}
