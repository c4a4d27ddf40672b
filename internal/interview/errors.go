package interview

import (
	"errors"
	"fmt"
)

// SessionFailedMessage is shown whenever starting or answering fails.
const SessionFailedMessage = "Error: Interview session failed. Please try again."

// ValidationError rejects an action locally before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// PermissionKind classifies microphone access failures.
type PermissionKind string

const (
	PermissionDenied PermissionKind = "denied"
	NoMicrophone     PermissionKind = "no_microphone"
	PermissionOther  PermissionKind = "other"
)

// PermissionError indicates voice input could not acquire the microphone.
// Text input is unaffected.
type PermissionError struct {
	Kind   PermissionKind
	Reason string
	Err    error
}

func (e *PermissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("microphone %s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("microphone %s: %s", e.Kind, e.Reason)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// UnsupportedCapabilityError means the platform lacks a capability such as
// speech recognition.
type UnsupportedCapabilityError struct {
	Capability string
	Reason     string
}

func (e *UnsupportedCapabilityError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s is not supported: %s", e.Capability, e.Reason)
	}
	return fmt.Sprintf("%s is not supported", e.Capability)
}

// NetworkError is a non-2xx response or transport failure from the
// interview API. Status is 0 for transport failures.
type NetworkError struct {
	Status  int
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("interview API returned %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("interview API request failed: %s", msg)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// LockConflictError reports HTTP 423: the session is busy with another
// operation on the server.
type LockConflictError struct {
	SessionID string
	Message   string
}

func (e *LockConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("session %s is locked: %s", e.SessionID, e.Message)
	}
	return fmt.Sprintf("session %s is locked", e.SessionID)
}

// PlaybackError is a failed question clip. It is logged and never shown.
type PlaybackError struct {
	URL string
	Err error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback of %s failed: %v", e.URL, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// UserMessage converts an error into the text shown in the UI.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}

	var permErr *PermissionError
	if errors.As(err, &permErr) {
		switch permErr.Kind {
		case PermissionDenied:
			return "Microphone access was denied. Allow microphone access or type your answer."
		case NoMicrophone:
			return "No microphone was found. Connect one or type your answer."
		default:
			if permErr.Reason != "" {
				return "Could not start the microphone: " + permErr.Reason
			}
			return "Could not start the microphone."
		}
	}

	var unsupported *UnsupportedCapabilityError
	if errors.As(err, &unsupported) {
		if unsupported.Capability == CapabilitySpeech {
			return "Speech recognition is not supported on this system."
		}
		return unsupported.Error()
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return SessionFailedMessage
	}

	return err.Error()
}

// CapabilitySpeech names the speech recognition capability.
const CapabilitySpeech = "speech recognition"
