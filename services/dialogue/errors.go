package dialogue

import "errors"

// ErrorKind classifies why a turn did not advance.
type ErrorKind string

const (
	KindNone                    ErrorKind = ""
	KindExtractionFailure       ErrorKind = "extraction_failure"
	KindValidationFailure       ErrorKind = "validation_failure"
	KindNotFound                ErrorKind = "not_found"
	KindCollaboratorUnavailable ErrorKind = "collaborator_unavailable"
)

var (
	// ErrStateNotFound is returned by a StateBackend when no state is stored for a user.
	ErrStateNotFound = errors.New("conversation state not found")
	// ErrCollaboratorUnavailable marks a failed or timed-out collaborator call.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)
