package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/mobile-garage/internal/apperr"
	"github.com/ukydev/mobile-garage/internal/notify"
)

// ContactHandler relays contact-form messages to the support mailbox.
type ContactHandler struct {
	mailer  notify.Mailer
	mailbox string
}

func NewContactHandler(mailer notify.Mailer, mailbox string) *ContactHandler {
	return &ContactHandler{mailer: mailer, mailbox: mailbox}
}

// Submit sends the message before responding; delivery failure is an error.
func (h *ContactHandler) Submit(c *gin.Context) {
	p, err := bindPayload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := p.Require("name", "email", "message"); err != nil {
		respondError(c, err)
		return
	}
	name, err := p.String("name")
	if err != nil {
		respondError(c, err)
		return
	}
	email, err := p.Email("email")
	if err != nil {
		respondError(c, err)
		return
	}
	text, err := p.String("message")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.mailer.Send(c.Request.Context(), notify.ContactMessage(h.mailbox, name, email, text)); err != nil {
		respondError(c, apperr.Internal("Failed to send message", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message sent successfully"})
}
