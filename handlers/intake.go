package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"p9e.in/challan/middleware"
	"p9e.in/challan/models"
	"p9e.in/challan/utils"
)

// defaultFineAmount is the fine for a red light violation, fixed at
// challan creation and never changed afterwards.
const defaultFineAmount = 1000

const challanIDAttempts = 3

// IntakeViolation accepts a violation report from the camera system.
// Evidence storage and owner notification are best effort; only the
// violation row itself decides success.
func (h *Handler) IntakeViolation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		fail(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	if strings.TrimSpace(r.PostFormValue("api_key")) != h.cfg.CameraAPIKey || h.cfg.CameraAPIKey == "" {
		fail(w, http.StatusUnauthorized, "Invalid API key")
		return
	}

	numberplate := utils.SanitizeInput(r.PostFormValue("numberplate"))
	location := utils.SanitizeInput(r.PostFormValue("location"))
	violationType := utils.SanitizeInput(r.PostFormValue("violation_type"))
	if violationType == "" {
		violationType = "Red Light Violation"
	}

	if numberplate == "" {
		fail(w, http.StatusBadRequest, "Number plate is required")
		return
	}
	if location == "" {
		fail(w, http.StatusBadRequest, "Location is required")
		return
	}

	// Owner is optional: the violation is recorded either way and the
	// response flags whether owner details were found.
	owner, err := h.owners.FindByPlate(numberplate)
	if err != nil && !isNotFound(err) {
		log.WithError(err).Error("Intake: owner lookup failed")
		failInternal(w)
		return
	}

	now := time.Now()
	v := models.Violation{
		Numberplate:   numberplate,
		ViolationDate: now,
		Location:      location,
		ViolationType: violationType,
		Amount:        defaultFineAmount,
		Status:        models.StatusUnpaid,
	}

	if lat, lng, ok := parseCoordinates(r); ok {
		v.Latitude = &lat
		v.Longitude = &lng
	}
	if meta := strings.TrimSpace(r.PostFormValue("metadata")); meta != "" {
		v.Metadata = datatypes.JSON(meta)
	}

	// Persist, regenerating the challan id if the unique index rejects it.
	var created bool
	for attempt := 0; attempt < challanIDAttempts && !created; attempt++ {
		v.ChallanID = utils.GenerateChallanID(now)
		v.ImagePath = h.saveEvidence(v.ChallanID, r.PostFormValue("image"))
		err = h.violations.Create(&v)
		switch {
		case err == nil:
			created = true
		case models.IsDuplicateKey(err) || strings.Contains(err.Error(), "duplicate key"):
			log.Warnf("Challan id collision on %s, regenerating", v.ChallanID)
		default:
			log.WithError(err).Error("Intake: violation insert failed")
			failInternal(w)
			return
		}
	}
	if !created {
		log.Errorf("Intake: exhausted %d challan id attempts", challanIDAttempts)
		failInternal(w)
		return
	}

	outsideZone := h.checkZone(&v)

	h.activity.Record(models.ActionViolationCreated,
		fmt.Sprintf("Violation recorded: %s, plate %s at %s", v.ChallanID, numberplate, location),
		nil, middleware.GetClientIP(r))

	if owner != nil && owner.Email != "" {
		h.dispatchOwnerNotification(&v, owner)
	}

	message := "Violation recorded successfully."
	if owner == nil {
		message = "Vehicle owner not found in database, violation recorded without owner details."
	}

	ok(w, message, map[string]interface{}{
		"challan_id":     v.ChallanID,
		"numberplate":    v.Numberplate,
		"location":       v.Location,
		"violation_type": v.ViolationType,
		"amount":         v.Amount,
		"date":           v.ViolationDate.Format("2006-01-02 15:04:05"),
		"owner_found":    owner != nil,
		"outside_zone":   outsideZone,
	})
}

func parseCoordinates(r *http.Request) (lat, lng float64, ok bool) {
	latStr := r.PostFormValue("latitude")
	lngStr := r.PostFormValue("longitude")
	if latStr == "" || lngStr == "" {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

// saveEvidence decodes and stores the base64 evidence image. Failure is
// logged and the intake continues without an image path: a violation that
// needs human review beats no record at all.
func (h *Handler) saveEvidence(challanID, imageData string) *string {
	if imageData == "" {
		return nil
	}

	imageData = strings.TrimPrefix(imageData, "data:image/jpeg;base64,")
	imageData = strings.TrimPrefix(imageData, "data:image/png;base64,")
	imageData = strings.ReplaceAll(imageData, " ", "+")

	decoded, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		log.WithError(err).Warnf("Evidence decode failed for %s", challanID)
		return nil
	}

	dir := filepath.Join(h.cfg.UploadDir, "violations")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.WithError(err).Warnf("Evidence directory creation failed for %s", challanID)
		return nil
	}

	filename := challanID + ".jpg"
	if err := os.WriteFile(filepath.Join(dir, filename), decoded, 0644); err != nil {
		log.WithError(err).Warnf("Evidence write failed for %s", challanID)
		return nil
	}

	path := "uploads/violations/" + filename
	return &path
}

// checkZone flags reports whose coordinates fall outside every configured
// enforcement zone. The violation is still recorded; the flag feeds review.
func (h *Handler) checkZone(v *models.Violation) bool {
	if h.zones.Len() == 0 || v.Latitude == nil || v.Longitude == nil {
		return false
	}
	if zone, inside := h.zones.Contains(*v.Latitude, *v.Longitude); inside {
		log.Debugf("Violation %s inside zone %q", v.ChallanID, zone)
		return false
	}
	log.Warnf("Violation %s reported outside all enforcement zones", v.ChallanID)
	return true
}

// dispatchOwnerNotification queues the notification email after the row
// has committed. Delivery failure never surfaces to the camera system.
func (h *Handler) dispatchOwnerNotification(v *models.Violation, owner *models.VehicleOwner) {
	if !h.mail.Enabled() {
		return
	}

	subject := "Traffic Violation Notification - Challan #" + v.ChallanID
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", owner.OwnerName)
	fmt.Fprintf(&b, "We regret to inform you that a traffic violation has been recorded for your vehicle with registration number %s.\n\n", v.Numberplate)
	b.WriteString("Violation Details:\n")
	fmt.Fprintf(&b, "Challan ID: %s\n", v.ChallanID)
	fmt.Fprintf(&b, "Violation Type: %s\n", v.ViolationType)
	fmt.Fprintf(&b, "Location: %s\n", v.Location)
	fmt.Fprintf(&b, "Date and Time: %s\n", v.ViolationDate.Format("02-Jan-2006 03:04 PM"))
	fmt.Fprintf(&b, "Fine Amount: %s\n\n", utils.FormatCurrency(v.Amount))
	fmt.Fprintf(&b, "You can view and pay your challan by visiting: %s/api/v1/challans/%s/payment\n\n", h.cfg.SiteURL, v.ChallanID)
	b.WriteString("If you believe this violation has been issued in error, please contact the Traffic Police Department.\n\n")
	b.WriteString("Thank you,\nTraffic Police Department")

	to := owner.Email
	body := b.String()
	h.tasks.Submit("owner-notification "+v.ChallanID, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 35*time.Second)
		defer cancel()
		return h.mail.Send(ctx, to, subject, body)
	})
}
