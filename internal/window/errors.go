package window

// contractError signals an upstream contract violation that filtering cannot
// safely paper over (e.g., an event without a meeting ID while skip filtering
// is active). These surface to the caller; data-quality problems do not.
type contractError struct{ msg string }

func (e contractError) Error() string { return "contract violation: " + e.msg }

// ErrContractViolation constructs a contractError.
func ErrContractViolation(msg string) error { return contractError{msg: msg} }

// IsContractViolation reports whether err indicates an upstream contract violation.
func IsContractViolation(err error) bool {
	_, ok := err.(contractError)
	return ok
}
