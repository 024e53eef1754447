package services

import "errors"

// Sentinel markers for error classification across the pipeline. Callers
// tag errors with %w so triggers can distinguish degradable failures from
// ones that must abort a pass.
var (
	ErrExternalTool  = errors.New("external tool error")
	ErrCollaborator  = errors.New("collaborator error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
)

// IsFatal reports whether an error must abort the current pipeline pass.
// Collaborator and tool failures degrade to recorded error fields on the
// affected unit instead.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrNotFound)
}
