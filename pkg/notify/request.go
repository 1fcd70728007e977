package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

// Request is one notification to deliver to one or more recipients.
// ID is informational only; it is never used for deduplication.
type Request struct {
	ID          string
	Recipients  []string
	Subject     string // overrides the template subject when set
	Kind        Kind
	Payload     Payload
	Priority    Priority
	Attachments []mailer.Attachment
}

// NewRequest builds a normal-priority request whose kind comes from payload.
func NewRequest(payload Payload, recipients ...string) Request {
	req := Request{
		Recipients: recipients,
		Priority:   PriorityNormal,
		Payload:    payload,
	}
	if payload != nil {
		req.Kind = payload.Kind()
	}
	return req
}

// WithPriority returns a copy of r with priority p.
func (r Request) WithPriority(p Priority) Request {
	r.Priority = p
	return r
}

// WithSubject returns a copy of r with an explicit subject.
func (r Request) WithSubject(subject string) Request {
	r.Subject = subject
	return r
}

// Validate checks recipients, kind and that the payload matches the kind.
// A nil payload is allowed and renders as the zero payload.
func (r Request) Validate() error {
	var errs []error
	if len(cleanRecipients(r.Recipients)) == 0 {
		errs = append(errs, ErrNoRecipients)
	}
	if !r.Kind.Valid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind))
	} else if r.Payload != nil && r.Payload.Kind() != r.Kind {
		errs = append(errs, fmt.Errorf("%w: %s payload for %s", ErrPayloadMismatch, r.Payload.Kind(), r.Kind))
	}
	if r.Priority != "" && !r.Priority.Valid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidPriority, r.Priority))
	}
	return errors.Join(errs...)
}

// Normalize fills in defaults: an ID, normal priority and trimmed recipients.
func (r Request) Normalize() Request {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Priority == "" {
		r.Priority = PriorityNormal
	}
	r.Recipients = cleanRecipients(r.Recipients)
	return r
}

func cleanRecipients(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

type requestJSON struct {
	ID          string              `json:"id,omitempty"`
	Recipients  []string            `json:"recipients"`
	Subject     string              `json:"subject,omitempty"`
	Kind        Kind                `json:"kind"`
	Payload     json.RawMessage     `json:"payload,omitempty"`
	Priority    Priority            `json:"priority,omitempty"`
	Attachments []mailer.Attachment `json:"attachments,omitempty"`
}

// MarshalJSON encodes the request with the payload nested under "payload".
func (r Request) MarshalJSON() ([]byte, error) {
	out := requestJSON{
		ID:          r.ID,
		Recipients:  r.Recipients,
		Subject:     r.Subject,
		Kind:        r.Kind,
		Priority:    r.Priority,
		Attachments: r.Attachments,
	}
	if r.Payload != nil {
		raw, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, fmt.Errorf("notify: encode payload: %w", err)
		}
		out.Payload = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the payload into the concrete type selected by "kind".
func (r *Request) UnmarshalJSON(data []byte) error {
	var in requestJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	kind, err := ParseKind(string(in.Kind))
	if err != nil {
		return err
	}
	payload, err := DecodePayload(kind, in.Payload)
	if err != nil {
		return err
	}
	*r = Request{
		ID:          in.ID,
		Recipients:  in.Recipients,
		Subject:     in.Subject,
		Kind:        kind,
		Payload:     payload,
		Priority:    in.Priority,
		Attachments: in.Attachments,
	}
	return nil
}
