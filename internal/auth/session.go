// Package auth describes the signed-in state handed to presentation layers.
// A Session is read-only: renderers display it and never write back to the
// config store.
package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/semmy-space/codex/internal/config"
)

// Method identifies how the user authenticated
type Method string

const (
	MethodSubscription Method = "subscription"
	MethodAPIKey       Method = "api-key"
)

// Session is either a SubscriptionSession or an APIKeySession
type Session interface {
	Method() Method
	isSession()
}

// SubscriptionSession is a session backed by an account sign-in
type SubscriptionSession struct {
	Email      string
	VerifiedAt time.Time
}

func (SubscriptionSession) Method() Method { return MethodSubscription }
func (SubscriptionSession) isSession()     {}

// MarshalJSON encodes the session with its method tag
func (s SubscriptionSession) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSession{
		Method:     MethodSubscription,
		Email:      s.Email,
		VerifiedAt: s.VerifiedAt,
	})
}

// APIKeySession is a session backed by a stored API key. The key is masked.
type APIKeySession struct {
	MaskedKey  string
	CapturedAt time.Time
}

func (APIKeySession) Method() Method { return MethodAPIKey }
func (APIKeySession) isSession()     {}

// MarshalJSON encodes the session with its method tag
func (s APIKeySession) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSession{
		Method:     MethodAPIKey,
		APIKey:     s.MaskedKey,
		CapturedAt: s.CapturedAt,
	})
}

// wireSession is the tagged JSON form shared by both variants
type wireSession struct {
	Method     Method    `json:"method"`
	Email      string    `json:"email,omitempty"`
	VerifiedAt time.Time `json:"verifiedAt,omitzero"`
	APIKey     string    `json:"apiKey,omitempty"`
	CapturedAt time.Time `json:"capturedAt,omitzero"`
}

// FromRecord builds the session for a stored record. apiKey is the resolved
// secret, which may come from the keyring rather than rec. ok is false when
// there is no key.
func FromRecord(rec config.Record, apiKey string) (Session, bool) {
	if apiKey == "" {
		return nil, false
	}

	return APIKeySession{
		MaskedKey:  MaskAPIKey(apiKey),
		CapturedAt: rec.UpdatedAt,
	}, true
}

// DecodeSession parses the tagged JSON form produced by the MarshalJSON methods
func DecodeSession(data []byte) (Session, error) {
	var wire wireSession
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	switch wire.Method {
	case MethodSubscription:
		return SubscriptionSession{Email: wire.Email, VerifiedAt: wire.VerifiedAt}, nil
	case MethodAPIKey:
		return APIKeySession{MaskedKey: wire.APIKey, CapturedAt: wire.CapturedAt}, nil
	default:
		return nil, fmt.Errorf("unknown session method: %q", wire.Method)
	}
}
