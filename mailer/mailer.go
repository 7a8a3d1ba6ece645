// Package mailer implements the outbound email job. The job subsystem does
// not render or transport mail itself; it delegates to a Sender owned by the
// platform and retries delivery through the broker's backoff schedule.
package mailer

import (
	"context"
	"fmt"

	"github.com/levish0/mofujobs/internal/logging"
	"github.com/levish0/mofujobs/types"
)

// Email kinds the platform enqueues.
const (
	KindVerifyEmail   = "verify_email"
	KindResetPassword = "reset_password"
)

// Job is the wire payload of the email subject.
type Job struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Kind    string `json:"kind"`
	Token   string `json:"token"`
}

// Sender delivers one email. Implementations live with the platform (SMTP,
// provider API); the handler only cares that Send is safe to retry.
type Sender interface {
	Send(ctx context.Context, job Job) error
}

// Handler delivers email jobs through a Sender.
type Handler struct {
	sender Sender
	logger types.Logger
}

// NewHandler wires the email job handler.
func NewHandler(sender Sender, logger types.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Handler{sender: sender, logger: logger}
}

// Handle sends one email; failure naks the job for broker-managed retry.
func (h *Handler) Handle(ctx context.Context, job Job) error {
	if err := h.sender.Send(ctx, job); err != nil {
		return fmt.Errorf("send %s email to %s: %w", job.Kind, job.To, err)
	}

	h.logger.Debug("sent email", "kind", job.Kind, "to", job.To)

	return nil
}
