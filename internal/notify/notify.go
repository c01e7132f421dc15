// Package notify composes the confirmation and waiting-list emails and
// delivers them to the configured webhook endpoints.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/nycd79/borough-bash/internal/model"
)

// Email is a composed message ready for delivery.
type Email struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Payload carries the registrant fields the webhook receives.
type Payload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Title     string `json:"title"`
	Program   string `json:"program"`
	Region    string `json:"region"`
	Email     string `json:"email"`
}

// PayloadFor extracts the webhook payload from a registration.
func PayloadFor(reg *model.Registration) Payload {
	return Payload{
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Title:     reg.Title,
		Program:   reg.Program,
		Region:    string(reg.Region),
		Email:     reg.Email,
	}
}

// ConfirmationEmail composes the message sent to a confirmed registrant.
func ConfirmationEmail(p Payload) Email {
	subject := "District 79 Week Mixer: Borough Hall Bash - Registration Confirmed"
	body := fmt.Sprintf(`Dear %s %s,

Thank you for registering for the District 79 Week Mixer: Borough Hall Bash at Brooklyn Borough Hall on Thursday, Feb 26 from 2 PM to 4 PM. Your spot is confirmed for %s. Please remember to bring a valid ID to enter Borough Hall.

Program: %s
Title: %s
Email: %s

We look forward to seeing you!
District 79`, p.FirstName, p.LastName, p.Region, p.Program, p.Title, p.Email)
	return Email{Subject: subject, Body: body}
}

// WaitingListEmail composes the message sent to a wait-listed registrant.
func WaitingListEmail(p Payload) Email {
	subject := "District 79 Week Mixer: Borough Hall Bash - Waiting List"
	body := fmt.Sprintf(`Dear %s %s,

Thank you for your interest in the District 79 Week Mixer: Borough Hall Bash at Brooklyn Borough Hall on Thursday, Feb 26 from 2 PM to 4 PM. The capacity for %s has been reached, and you have been placed on the waiting list.

Program: %s
Title: %s
Email: %s

If a spot becomes available, we will contact you at this email address.

District 79`, p.FirstName, p.LastName, p.Region, p.Program, p.Title, p.Email)
	return Email{Subject: subject, Body: body}
}

// EmailFor composes the message matching a registration outcome.
func EmailFor(status model.Status, p Payload) Email {
	if status == model.StatusConfirmed {
		return ConfirmationEmail(p)
	}
	return WaitingListEmail(p)
}

// Notifier posts submission outcomes to per-status webhook URLs. Delivery
// is best-effort: failures are logged and never surfaced to the caller.
type Notifier struct {
	confirmationURL string
	waitingListURL  string
	secret          string
	client          *http.Client
	log             zerolog.Logger
}

// NewNotifier constructs a Notifier. Empty URLs disable the matching hook.
func NewNotifier(confirmationURL, waitingListURL, secret string, log zerolog.Logger) *Notifier {
	return &Notifier{
		confirmationURL: confirmationURL,
		waitingListURL:  waitingListURL,
		secret:          secret,
		client:          &http.Client{Timeout: 10 * time.Second},
		log:             log,
	}
}

// Notify delivers the composed email plus registrant payload for one
// submission outcome. Never returns an error.
func (n *Notifier) Notify(ctx context.Context, status model.Status, p Payload) {
	url := n.waitingListURL
	if status == model.StatusConfirmed {
		url = n.confirmationURL
	}
	if url == "" {
		return
	}

	email := EmailFor(status, p)
	msg := struct {
		Payload
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}{Payload: p, Subject: email.Subject, Body: email.Body}

	buf, err := json.Marshal(msg)
	if err != nil {
		n.log.Error().Err(err).Msg("encode webhook payload")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		n.log.Error().Err(err).Str("url", url).Msg("build webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if n.secret != "" {
		req.Header.Set("x-webhook-secret", n.secret)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Error().Err(err).Str("url", url).Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		n.log.Error().
			Int("status", resp.StatusCode).
			Str("url", url).
			Str("body", string(snippet)).
			Msg("webhook rejected notification")
	}
}
