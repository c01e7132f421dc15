package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nycd79/borough-bash/internal/model"
)

var testPayload = Payload{
	FirstName: "Jamie",
	LastName:  "Rivera",
	Title:     "Teacher",
	Program:   "Adult Education",
	Region:    "Brooklyn",
	Email:     "jrivera@schools.nyc.gov",
}

func TestConfirmationEmail(t *testing.T) {
	email := ConfirmationEmail(testPayload)
	assert.Contains(t, email.Subject, "Registration Confirmed")
	assert.Contains(t, email.Body, "Dear Jamie Rivera")
	assert.Contains(t, email.Body, "confirmed for Brooklyn")
	assert.Contains(t, email.Body, "Program: Adult Education")
}

func TestWaitingListEmail(t *testing.T) {
	email := WaitingListEmail(testPayload)
	assert.Contains(t, email.Subject, "Waiting List")
	assert.Contains(t, email.Body, "capacity for Brooklyn has been reached")
	assert.Contains(t, email.Body, "If a spot becomes available")
}

func TestEmailForPicksBucket(t *testing.T) {
	assert.Contains(t, EmailFor(model.StatusConfirmed, testPayload).Subject, "Confirmed")
	assert.Contains(t, EmailFor(model.StatusWaitingList, testPayload).Subject, "Waiting List")
}

func TestNotifierDeliversWithSecret(t *testing.T) {
	var got struct {
		Payload
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	var gotSecret string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("x-webhook-secret")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "", "hunter2", zerolog.Nop())
	n.Notify(context.Background(), model.StatusConfirmed, testPayload)

	assert.Equal(t, "hunter2", gotSecret)
	assert.Equal(t, "jrivera@schools.nyc.gov", got.Email)
	assert.Contains(t, got.Subject, "Confirmed")
	assert.Contains(t, got.Body, "Dear Jamie Rivera")
}

func TestNotifierRoutesByStatus(t *testing.T) {
	hits := make(map[string]int)
	newHook := func(name string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits[name]++
		}))
	}
	confirmed := newHook("confirmed")
	defer confirmed.Close()
	waiting := newHook("waiting")
	defer waiting.Close()

	n := NewNotifier(confirmed.URL, waiting.URL, "", zerolog.Nop())
	n.Notify(context.Background(), model.StatusConfirmed, testPayload)
	n.Notify(context.Background(), model.StatusWaitingList, testPayload)

	assert.Equal(t, 1, hits["confirmed"])
	assert.Equal(t, 1, hits["waiting"])
}

func TestNotifierDisabledWithoutURL(t *testing.T) {
	// No URL configured for the status: Notify must be a quiet no-op.
	n := NewNotifier("", "", "", zerolog.Nop())
	n.Notify(context.Background(), model.StatusConfirmed, testPayload)
	n.Notify(context.Background(), model.StatusWaitingList, testPayload)
}
