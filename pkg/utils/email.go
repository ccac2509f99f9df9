package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/cservice/cservice-backend/internal/models"
)

var (
	emailFrom     = os.Getenv("EMAIL_FROM")
	emailPassword = os.Getenv("EMAIL_PASSWORD")
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	companyName   = "CService"
	baseURL       = os.Getenv("BASE_URL")
)

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
			<h2 style="color: #4CAF50; margin: 0;">CService</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>© 2026 CService. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`

func sendEmail(to []string, subject, body string) error {
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
	headers["X-Mailer"] = "CService-Mailer"

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

func formatSlot(t time.Time) string {
	return t.Format("Monday, 2 January 2006 at 15:04")
}

func SendBookingConfirmationEmail(ownerEmail string, b models.Booking) error {
	subject := "Booking Received - CService"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Received</h1>
					<p>Hello,</p>
					<p>Your <strong>%s</strong> booking for <strong>%s</strong> has been received and is pending confirmation.</p>
					<p>We will let you know as soon as it is confirmed.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/bookings" style="background-color: #4CAF50; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">View Your Bookings</a>
					</div>
					<p>Best regards,<br>The CService Team</p>
				</div>`+emailFooter,
		b.ServiceType, formatSlot(b.ScheduledFor), baseURL)

	return sendEmail([]string{ownerEmail}, subject, body)
}

func SendBookingUpdatedEmail(ownerEmail string, b models.Booking) error {
	subject := "Booking Updated - CService"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Updated</h1>
					<p>Hello,</p>
					<p>Your <strong>%s</strong> booking has been updated. It is now scheduled for <strong>%s</strong>.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/bookings" style="background-color: #4CAF50; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">View Your Bookings</a>
					</div>
					<p>Best regards,<br>The CService Team</p>
				</div>`+emailFooter,
		b.ServiceType, formatSlot(b.ScheduledFor), baseURL)

	return sendEmail([]string{ownerEmail}, subject, body)
}

func SendBookingCancelledEmail(ownerEmail string, b models.Booking) error {
	subject := "Booking Cancelled - CService"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Cancelled</h1>
					<p>Hello,</p>
					<p>Your <strong>%s</strong> booking for <strong>%s</strong> has been cancelled.</p>
					<p>The slot is now free again. You can book a new appointment at any time.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/bookings" style="background-color: #4CAF50; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Book Again</a>
					</div>
					<p>Best regards,<br>The CService Team</p>
				</div>`+emailFooter,
		b.ServiceType, formatSlot(b.ScheduledFor), baseURL)

	return sendEmail([]string{ownerEmail}, subject, body)
}
