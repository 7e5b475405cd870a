package command

import "fmt"

// ErrorKind names why an invocation was refused before the command ran.
type ErrorKind int

const (
	NoVoiceChannel ErrorKind = iota + 1
	NotConnected
	MissingPermissions
	WrongChannel
)

func (k ErrorKind) String() string {
	switch k {
	case NoVoiceChannel:
		return "no_voice_channel"
	case NotConnected:
		return "not_connected"
	case MissingPermissions:
		return "missing_permissions"
	case WrongChannel:
		return "wrong_channel"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Message is the text shown to the user.
func (k ErrorKind) Message() string {
	switch k {
	case NoVoiceChannel:
		return "Join a voicechannel first."
	case NotConnected:
		return "Not connected."
	case MissingPermissions:
		return "I need the `CONNECT` and `SPEAK` permissions."
	case WrongChannel:
		return "You need to be in my voicechannel."
	}
	return "Something went wrong."
}

// InvocationError is returned by guards that refuse to run a command. The
// dispatcher reports it to the user.
type InvocationError struct {
	Kind ErrorKind
}

func NewInvocationError(kind ErrorKind) *InvocationError {
	return &InvocationError{Kind: kind}
}

func (e *InvocationError) Error() string { return e.Kind.Message() }

// Is matches any *InvocationError of the same kind, so
// errors.Is(err, command.NewInvocationError(command.WrongChannel)) works.
func (e *InvocationError) Is(target error) bool {
	t, ok := target.(*InvocationError)
	return ok && t.Kind == e.Kind
}
