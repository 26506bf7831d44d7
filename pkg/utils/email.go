package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

const companyName = "RouteGenius"

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #4CAF50; margin: 0;">RouteGenius</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>© 2025 RouteGenius. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`

func sendEmail(to []string, subject, body string) error {
	emailFrom := os.Getenv("EMAIL_FROM")
	emailPassword := os.Getenv("EMAIL_PASSWORD")
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")

	if emailFrom == "" || emailPassword == "" || smtpHost == "" || smtpPort == "" {
		return fmt.Errorf("email configuration not set")
	}

	// Headers
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", companyName, emailFrom)
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"
	headers["X-Mailer"] = "RouteGenius-Mailer"

	// Build message
	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	// Authentication
	auth := smtp.PlainAuth("", emailFrom, emailPassword, smtpHost)

	// Send email
	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, emailFrom, to, []byte(message))
	if err != nil {
		log.Printf("Failed to send email: %v", err)
		return err
	}

	log.Printf("Successfully sent email to recipients: %v", to)
	return nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func parcelRegisteredBody(recipientName, trackingCode, status, description string) string {
	return fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Parcel Registered</h1>
					<p>Dear %s,</p>
					<p>A new parcel has been registered for you.</p>
					<p>Tracking ID: <strong>%s</strong><br>
					Current Status: <strong>%s</strong><br>
					Description: %s</p>
					<p>You can track your parcel using the ID provided.</p>
					<p>Thank you for using RouteGenius!</p>
				</div>`+emailFooter,
		recipientName, trackingCode, status, orNA(description))
}

func parcelUpdatedBody(recipientName, trackingCode, status, location, description string) string {
	return fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Parcel Update</h1>
					<p>Dear %s,</p>
					<p>Your parcel with Tracking ID <strong>%s</strong> has been updated.</p>
					<p>New Status: <strong>%s</strong><br>
					Current Location: %s<br>
					Description: %s</p>
					<p>You can track your parcel using the ID provided.</p>
					<p>Thank you for using RouteGenius!</p>
				</div>`+emailFooter,
		recipientName, trackingCode, status, orNA(location), orNA(description))
}

// SendParcelRegisteredEmail notifies a recipient that a parcel has been
// registered for them.
func SendParcelRegisteredEmail(toEmail, recipientName, trackingCode, status, description string) error {
	subject := "Your New Parcel Has Been Registered! - Tracking ID: " + trackingCode
	return sendEmail([]string{toEmail}, subject, parcelRegisteredBody(recipientName, trackingCode, status, description))
}

// SendParcelUpdatedEmail notifies a recipient that their parcel changed.
func SendParcelUpdatedEmail(toEmail, recipientName, trackingCode, status, location, description string) error {
	subject := "Parcel Update Notification - Tracking ID: " + trackingCode
	return sendEmail([]string{toEmail}, subject, parcelUpdatedBody(recipientName, trackingCode, status, location, description))
}
