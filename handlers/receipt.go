package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"p9e.in/challan/models"
	"p9e.in/challan/utils"
)

// GetReceipt renders the payment receipt for a paid challan. The default
// is JSON; format=xlsx streams a downloadable spreadsheet instead.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	challanID := utils.SanitizeInput(mux.Vars(r)["challanID"])

	details, err := h.violations.FindByChallanID(challanID)
	if err != nil {
		if isNotFound(err) {
			fail(w, http.StatusNotFound, "Invalid challan ID or challan not found.")
			return
		}
		log.WithError(err).Error("Receipt: challan fetch failed")
		failInternal(w)
		return
	}
	if details.Status != models.StatusPaid {
		fail(w, http.StatusConflict, "This challan has not been paid yet.")
		return
	}

	if r.URL.Query().Get("format") == "xlsx" {
		h.writeReceiptXLSX(w, details)
		return
	}

	ok(w, "Payment receipt.", map[string]interface{}{
		"challan":          details,
		"amount_formatted": utils.FormatCurrency(details.Amount),
	})
}

func (h *Handler) writeReceiptXLSX(w http.ResponseWriter, d *models.ChallanDetails) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Receipt"
	f.SetSheetName("Sheet1", sheet)

	rows := [][]interface{}{
		{"Traffic Challan Payment Receipt", ""},
		{"", ""},
		{"Challan ID", d.ChallanID},
		{"Vehicle Number", d.Numberplate},
		{"Violation Type", d.ViolationType},
		{"Location", d.Location},
		{"Violation Date", d.ViolationDate.Format("02-Jan-2006 03:04 PM")},
		{"Amount Paid", utils.FormatCurrency(d.Amount)},
		{"Status", d.Status},
	}
	if d.TransactionID != nil {
		rows = append(rows, []interface{}{"Transaction ID", *d.TransactionID})
	}
	if d.PaymentDate != nil {
		rows = append(rows, []interface{}{"Payment Date", d.PaymentDate.Format("02-Jan-2006 03:04 PM")})
	}
	if d.OwnerName != nil {
		rows = append(rows, []interface{}{"Owner Name", *d.OwnerName})
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			log.WithError(err).Error("Receipt: xlsx row write failed")
			failInternal(w)
			return
		}
	}
	f.SetColWidth(sheet, "A", "A", 20)
	f.SetColWidth(sheet, "B", "B", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		log.WithError(err).Error("Receipt: xlsx generation failed")
		failInternal(w)
		return
	}

	filename := fmt.Sprintf("receipt_%s.xlsx", d.ChallanID)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
