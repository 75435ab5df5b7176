package errors

import "fmt"

func InvalidParamsErr(err error) error {
	return E(Invalid, "invalid params", err)
}

func InvalidBodyErr(err error) error {
	return E(Invalid, "invalid command body", err)
}

func EmptyParamErr(field string) error {
	ve := ValidationErrs()
	ve.Add(field, "cannot be empty")
	return ve.Err()
}

func NotFoundErr(what, id string) error {
	return E(NotFound, fmt.Sprintf("%s %s not found", what, id), nil)
}

// InvalidTransitionErr is returned when an operation is attempted from a state that does not allow it.
func InvalidTransitionErr(operation, from string) error {
	return E(InvalidTransition, fmt.Sprintf("cannot %s a transaction in state %s", operation, from), nil)
}

// CapabilityNotAvailableErr is returned when a provider has no handler for a capability.
func CapabilityNotAvailableErr(capability, provider string) error {
	return E(CapabilityNotAvailable, fmt.Sprintf("the feature %s is not available for provider %s", capability, provider), nil)
}

// ConcurrentModificationErr signals a write conflict on a transaction; the caller may retry.
func ConcurrentModificationErr(id string, err error) error {
	return E(Conflict, fmt.Sprintf("transaction %s was modified concurrently", id), err)
}

func RecoverableLedgerErr(msg string, err error) error {
	return E(RecoverableLedger, msg, err)
}

func UnrecoverableLedgerErr(msg string, err error) error {
	return E(UnrecoverableLedger, msg, err)
}

// Retryable reports whether the caller may retry the same operation unchanged.
func Retryable(err error) bool {
	return Is(Conflict, err)
}
