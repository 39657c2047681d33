package utils

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/gomail.v2"
)

// SendVendFailureAlert emails the operations address when a paid-for vend
// fails, so someone can retry it manually. Best-effort only.
func SendVendFailureAlert(checkoutID, meterNumber string, amount float64, reason string) {
	recipient := os.Getenv("ALERT_EMAIL")
	if os.Getenv("SMTP_HOST") == "" || recipient == "" {
		log.Printf("Vend failure alert not sent (SMTP not configured): checkout=%s meter=%s reason=%s", checkoutID, meterNumber, reason)
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_SENDER"))
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", "Token vend failed for paid purchase "+checkoutID)
	m.SetBody("text/plain", fmt.Sprintf(
		"A confirmed payment could not be vended and needs a manual retry.\n\nCheckout ID: %s\nMeter: %s\nAmount: KES %.2f\nReason: %s\n",
		checkoutID, meterNumber, amount, reason))

	d := gomail.NewDialer(
		os.Getenv("SMTP_HOST"),
		465,
		os.Getenv("SMTP_USER"),
		os.Getenv("SMTP_PASS"),
	)

	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send vend failure alert for %s: %v", checkoutID, err)
		return
	}

	log.Printf("Vend failure alert sent for checkout %s", checkoutID)
}
