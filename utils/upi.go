package utils

import (
	"fmt"
	"net/url"
)

// BuildUPILink produces a UPI deep-link that payment apps pre-fill from:
// payee address, display name, amount, currency and a note carrying the
// challan id. Pure string construction, no network involved.
func BuildUPILink(upiID, payeeName string, amount float64, challanID string) string {
	q := url.Values{}
	q.Set("pa", upiID)
	q.Set("pn", payeeName)
	q.Set("am", fmt.Sprintf("%.2f", amount))
	q.Set("cu", "INR")
	q.Set("tn", "Challan Payment: "+challanID)
	return "upi://pay?" + q.Encode()
}

// QRImageURL returns a chart URL that renders the UPI link as a scannable
// QR code, sized for the payment page.
func QRImageURL(upiLink string) string {
	return "https://chart.googleapis.com/chart?chs=250x250&cht=qr&chl=" + url.QueryEscape(upiLink)
}
