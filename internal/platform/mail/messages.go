package mail

import (
	"fmt"
	"strings"
	"time"
)

// AppointmentDetails carries the appointment fields rendered into patient
// emails. StartAt and EndAt are assumed to already be in the clinic's
// display timezone.
type AppointmentDetails struct {
	PatientName string
	ClinicName  string
	StartAt     time.Time
	EndAt       time.Time
	DoctorName  string
	Department  string
	Notes       string
}

func formatDateTime(t time.Time) string {
	return t.Format("Jan 2, 2006 3:04 PM")
}

func formatTimeRange(start, end time.Time) string {
	if end.IsZero() {
		return formatDateTime(start)
	}
	return formatDateTime(start) + " - " + formatDateTime(end)
}

func detailLines(d AppointmentDetails) []string {
	doctor := d.DoctorName
	if doctor == "" {
		doctor = "TBD"
	}
	department := d.Department
	if department == "" {
		department = "-"
	}
	notes := d.Notes
	if notes == "" {
		notes = "-"
	}
	return []string{
		"Date and time: " + formatTimeRange(d.StartAt, d.EndAt),
		"Doctor: " + doctor,
		"Department: " + department,
		"Notes: " + notes,
	}
}

func renderMessage(d AppointmentDetails, intro, heading, outro string) (htmlBody, textBody string) {
	details := detailLines(d)

	htmlBody = fmt.Sprintf(
		"<p>Hello %s,</p>\n<p>%s</p>\n<p><strong>%s</strong><br/>\n%s</p>\n<p>%s</p>",
		d.PatientName, intro, heading, strings.Join(details, "<br/>"), outro,
	)

	textLines := append([]string{"Hello " + d.PatientName + ",", intro, heading + ":"}, details...)
	textLines = append(textLines, outro)
	textBody = strings.Join(textLines, "\n")
	return htmlBody, textBody
}

// BuildConfirmationEmail renders the message sent when an appointment is
// booked or confirmed.
func BuildConfirmationEmail(d AppointmentDetails) (subject, htmlBody, textBody string) {
	subject = "Appointment confirmation - " + d.ClinicName
	htmlBody, textBody = renderMessage(d,
		"Your appointment has been confirmed with "+d.ClinicName+".",
		"Appointment details",
		"If you need to reschedule, contact the clinic.",
	)
	return subject, htmlBody, textBody
}

// BuildUpdateEmail renders the message sent when appointment details
// change, showing the previous and updated details side by side.
func BuildUpdateEmail(old, updated AppointmentDetails) (subject, htmlBody, textBody string) {
	subject = "Appointment updated - " + updated.ClinicName
	oldDetails := detailLines(old)
	newDetails := detailLines(updated)

	htmlBody = fmt.Sprintf(
		"<p>Hello %s,</p>\n<p>Your appointment details have been updated.</p>\n"+
			"<p><strong>Previous details</strong><br/>\n%s</p>\n"+
			"<p><strong>Updated details</strong><br/>\n%s</p>\n"+
			"<p>If you have questions, please contact the clinic.</p>",
		updated.PatientName, strings.Join(oldDetails, "<br/>"), strings.Join(newDetails, "<br/>"),
	)

	textLines := []string{"Hello " + updated.PatientName + ",", "Your appointment details have been updated.", "Previous details:"}
	textLines = append(textLines, oldDetails...)
	textLines = append(textLines, "Updated details:")
	textLines = append(textLines, newDetails...)
	textLines = append(textLines, "If you have questions, please contact the clinic.")
	textBody = strings.Join(textLines, "\n")
	return subject, htmlBody, textBody
}

// BuildCancellationEmail renders the message sent when an appointment is
// cancelled.
func BuildCancellationEmail(d AppointmentDetails) (subject, htmlBody, textBody string) {
	subject = "Appointment cancelled - " + d.ClinicName
	htmlBody, textBody = renderMessage(d,
		"Your appointment with "+d.ClinicName+" has been cancelled.",
		"Original appointment",
		"Please contact the clinic if you need to reschedule.",
	)
	return subject, htmlBody, textBody
}

// BuildReminderEmail renders the upcoming-appointment reminder message.
func BuildReminderEmail(d AppointmentDetails) (subject, htmlBody, textBody string) {
	subject = "Appointment reminder - " + d.ClinicName
	htmlBody, textBody = renderMessage(d,
		"This is a reminder about your upcoming appointment with "+d.ClinicName+".",
		"Appointment details",
		"If you need to reschedule, contact the clinic.",
	)
	return subject, htmlBody, textBody
}
