package eventhub

import "errors"

// Hub-level sentinel errors.
var (
	ErrHubNotStarted       = errors.New("event hub has not been started")
	ErrHubAlreadyStarted   = errors.New("event hub has already been started")
	ErrHubShuttingDown     = errors.New("event hub is shutting down")
	ErrExtensionNil        = errors.New("extension is nil")
	ErrEventNil            = errors.New("event is nil")
	ErrUnknownEventNumber  = errors.New("event has no assigned event number")
	ErrWrapperAlreadySet   = errors.New("wrapper type can only be set before start")
	ErrNoReplyChannel      = errors.New("shared-state request has no reply channel")
	ErrRequestTimedOut     = errors.New("request to hub writer timed out")
	ErrCompletionNotFound  = errors.New("no completion handler registered for trigger id")
	ErrObserverNotFound    = errors.New("observer not registered")
	ErrSharedStateNotMono  = errors.New("shared state version is not strictly increasing")
	ErrSnapshotNotPending  = errors.New("snapshot is not pending")
)

// RegistrationError is the closed vocabulary returned on the registration
// callback, per §6 of the error surface.
type RegistrationError int

const (
	// RegistrationNone indicates successful registration.
	RegistrationNone RegistrationError = iota
	// RegistrationInvalidExtensionName indicates a missing or blank extension name.
	RegistrationInvalidExtensionName
	// RegistrationDuplicateExtensionName indicates the name is already registered.
	RegistrationDuplicateExtensionName
	// RegistrationExtensionInitializationFailure indicates the extension's
	// constructor-equivalent returned an error.
	RegistrationExtensionInitializationFailure
	// RegistrationExtensionNotRegistered indicates an unregister call for a
	// name that has no container.
	RegistrationExtensionNotRegistered
	// RegistrationUnknown is a catch-all for unexpected failures.
	RegistrationUnknown
)

// String renders the RegistrationError using the names in the error surface table.
func (r RegistrationError) String() string {
	switch r {
	case RegistrationNone:
		return "None"
	case RegistrationInvalidExtensionName:
		return "InvalidExtensionName"
	case RegistrationDuplicateExtensionName:
		return "DuplicateExtensionName"
	case RegistrationExtensionInitializationFailure:
		return "ExtensionInitializationFailure"
	case RegistrationExtensionNotRegistered:
		return "ExtensionNotRegistered"
	default:
		return "Unknown"
	}
}

func (r RegistrationError) Error() string { return r.String() }
