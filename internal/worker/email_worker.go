package worker

// email_worker.go
// Processes email jobs from QueueEmail: sends the final offer PDF to the
// principal who approved the version.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// Sender is satisfied by *infra.Mailer.
type Sender interface {
	Configured() bool
	SendOferta(to, subject, body, pdfPath string) error
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer Sender
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(mailer Sender) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends one email. Invalid payloads are dropped; SMTP failures are
// returned so the pool retries them.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}
	if !w.mailer.Configured() {
		log.Warn().Str("to", payload.ToEmail).Msg("email_worker: SMTP not configured, skipping")
		return nil
	}

	if err := w.mailer.SendOferta(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath); err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: oferta sent")
	return nil
}
