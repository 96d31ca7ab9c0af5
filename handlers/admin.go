package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"p9e.in/challan/middleware"
	"p9e.in/challan/models"
	"p9e.in/challan/utils"
)

// AdminDashboard serves the aggregate counters and the ten most recent
// violations. Read-only.
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.violations.Stats()
	if err != nil {
		log.WithError(err).Error("Dashboard: stats query failed")
		failInternal(w)
		return
	}
	recent, err := h.violations.Recent(10)
	if err != nil {
		log.WithError(err).Error("Dashboard: recent query failed")
		failInternal(w)
		return
	}

	ok(w, "Dashboard statistics.", map[string]interface{}{
		"stats":             stats,
		"revenue_formatted": utils.FormatCurrency(stats.Revenue),
		"recent_challans":   recent,
	})
}

// AdminListViolations is the paginated violations page with status and
// plate filters.
func (h *Handler) AdminListViolations(w http.ResponseWriter, r *http.Request) {
	f := models.ViolationFilter{
		Status:      utils.SanitizeInput(r.URL.Query().Get("status")),
		Numberplate: utils.SanitizeInput(r.URL.Query().Get("numberplate")),
		Page:        1,
		Limit:       10,
	}
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		f.Page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		f.Limit = l
	}

	rows, total, err := h.violations.List(f)
	if err != nil {
		log.WithError(err).Error("Admin: violations listing failed")
		failInternal(w)
		return
	}

	ok(w, "Violations.", map[string]interface{}{
		"total": total,
		"page":  f.Page,
		"limit": f.Limit,
		"data":  rows,
	})
}

var exportHeader = []string{"Challan ID", "Numberplate", "Violation Date", "Location",
	"Violation Type", "Amount", "Status", "Transaction ID", "Payment Date", "Owner Name"}

func exportRow(d models.ChallanDetails) []string {
	row := []string{
		d.ChallanID,
		d.Numberplate,
		d.ViolationDate.Format("2006-01-02 15:04:05"),
		d.Location,
		d.ViolationType,
		fmt.Sprintf("%.2f", d.Amount),
		d.Status,
		"", "", "",
	}
	if d.TransactionID != nil {
		row[7] = *d.TransactionID
	}
	if d.PaymentDate != nil {
		row[8] = d.PaymentDate.Format("2006-01-02 15:04:05")
	}
	if d.OwnerName != nil {
		row[9] = *d.OwnerName
	}
	return row
}

// AdminExportViolations downloads the filtered violation list as a
// spreadsheet (default) or CSV.
func (h *Handler) AdminExportViolations(w http.ResponseWriter, r *http.Request) {
	f := models.ViolationFilter{
		Status:      utils.SanitizeInput(r.URL.Query().Get("status")),
		Numberplate: utils.SanitizeInput(r.URL.Query().Get("numberplate")),
		Page:        1,
		Limit:       10000,
	}
	rows, _, err := h.violations.List(f)
	if err != nil {
		log.WithError(err).Error("Export: violations query failed")
		failInternal(w)
		return
	}

	var userID *string
	if claims := middleware.GetClaims(r); claims != nil {
		userID = &claims.UserID
	}
	h.activity.Record(models.ActionExport,
		fmt.Sprintf("Violations export, %d rows", len(rows)),
		userID, middleware.GetClientIP(r))

	if r.URL.Query().Get("format") == "csv" {
		h.writeViolationsCSV(w, rows)
		return
	}
	h.writeViolationsXLSX(w, rows)
}

func (h *Handler) writeViolationsCSV(w http.ResponseWriter, rows []models.ChallanDetails) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Write(exportHeader)
	for _, d := range rows {
		cw.Write(exportRow(d))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.WithError(err).Error("Export: csv write failed")
		failInternal(w)
		return
	}

	filename := fmt.Sprintf("violations_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) writeViolationsXLSX(w http.ResponseWriter, rows []models.ChallanDetails) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Violations"
	f.SetSheetName("Sheet1", sheet)

	header := make([]interface{}, len(exportHeader))
	for i, hdr := range exportHeader {
		header[i] = hdr
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		log.WithError(err).Error("Export: xlsx header write failed")
		failInternal(w)
		return
	}
	for i, d := range rows {
		cells := exportRow(d)
		row := make([]interface{}, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			log.WithError(err).Error("Export: xlsx row write failed")
			failInternal(w)
			return
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		log.WithError(err).Error("Export: xlsx generation failed")
		failInternal(w)
		return
	}

	filename := fmt.Sprintf("violations_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// AdminActivity lists recent activity log entries, newest first.
func (h *Handler) AdminActivity(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	entries, err := h.activity.Recent(limit)
	if err != nil {
		log.WithError(err).Error("Admin: activity query failed")
		failInternal(w)
		return
	}
	ok(w, "Recent activity.", entries)
}
