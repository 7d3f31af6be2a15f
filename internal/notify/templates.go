package notify

import (
	"fmt"
	"strings"

	"github.com/ukydev/mobile-garage/internal/models"
)

func changedBy(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "our service team"
	case models.RoleCustomer:
		return "you"
	default:
		return string(role)
	}
}

func contains(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

// serviceRequestMessage composes the customer e-mail for an update. A
// mechanic assignment takes precedence over a status change, which takes
// precedence over a general summary.
func serviceRequestMessage(u ServiceRequestUpdate) Message {
	req := u.Request
	var subject string
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", u.Customer.Name)

	switch {
	case contains(u.Changed, "mechanic_id") && u.Mechanic != nil:
		m := u.Mechanic
		subject = fmt.Sprintf("Mechanic assigned to service request #%d", req.ID)
		fmt.Fprintf(&b, "A mechanic has been assigned to your service request #%d (%s).\n\n", req.ID, req.Issue)
		fmt.Fprintf(&b, "Mechanic: %s\n", m.Name)
		if m.Specialty != "" {
			fmt.Fprintf(&b, "Specialty: %s\n", m.Specialty)
		}
		fmt.Fprintf(&b, "Phone: %s\n", m.PhoneNumber)
		fmt.Fprintf(&b, "Email: %s\n", m.Email)
		if contains(u.Changed, "status") {
			fmt.Fprintf(&b, "\nThe request status is now %q.\n", req.Status)
		}
	case contains(u.Changed, "status"):
		subject = fmt.Sprintf("Service request #%d is now %s", req.ID, req.Status)
		fmt.Fprintf(&b, "The status of your service request #%d (%s) was changed from %q to %q by %s.\n",
			req.ID, req.Issue, u.PreviousStatus, req.Status, changedBy(u.ChangedBy))
		if req.CompletedAt != nil && models.IsCompletedStatus(req.Status) {
			fmt.Fprintf(&b, "Completed at: %s\n", req.CompletedAt.Format("2006-01-02 15:04 MST"))
		}
	default:
		subject = fmt.Sprintf("Service request #%d updated", req.ID)
		fmt.Fprintf(&b, "Your service request #%d was updated by %s.\n\n", req.ID, changedBy(u.ChangedBy))
		fmt.Fprintf(&b, "Changed: %s\n", strings.Join(u.Changed, ", "))
		fmt.Fprintf(&b, "Issue: %s\nLocation: %s\nStatus: %s\n", req.Issue, req.Location, req.Status)
	}

	b.WriteString("\nThank you for choosing Mobile Garage.\n")
	return Message{To: []string{u.CustomerEmail}, Subject: subject, Body: b.String()}
}

func welcomeMessage(email, name string) Message {
	return Message{
		To:      []string{email},
		Subject: "Welcome to Mobile Garage",
		Body: fmt.Sprintf("Hello %s,\n\nYour account is ready. Sign in with %s to request a mechanic "+
			"and follow your repairs.\n\nThank you for choosing Mobile Garage.\n", name, email),
	}
}

// ContactMessage composes the relay of a contact form submission.
func ContactMessage(mailbox, name, email, text string) Message {
	return Message{
		To:      []string{mailbox},
		ReplyTo: email,
		Subject: "Contact form: " + name,
		Body:    fmt.Sprintf("From: %s <%s>\n\n%s\n", name, email, text),
	}
}
