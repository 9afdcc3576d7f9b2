// Package queue defines message payloads exchanged over the message broker.
package queue

// EmailEvent is published whenever the platform needs to deliver an email
// out-of-band, currently one-time passcodes for account activation.  The
// consumer performs the actual delivery, so request handlers never block
// on the mail path.  The OTP code travels only inside Body and is never
// logged by the publisher.
type EmailEvent struct {
    To       string `json:"to"`
    Subject  string `json:"subject"`
    Body     string `json:"body"`
    QueuedAt string `json:"queued_at"`
}
