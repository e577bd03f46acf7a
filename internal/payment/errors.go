package payment

import "errors"

// Errors
var (
	ErrInvalidInstruction    = errors.New("invalid instruction")
	ErrMissingSignature      = errors.New("missing required signature")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrAlreadyInitialized    = errors.New("already initialized")
	ErrNotInitialized        = errors.New("payment config not initialized")
	ErrOrderAlreadyProcessed = errors.New("order already processed")
	ErrTokenNotSupported     = errors.New("token not supported")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidCommission     = errors.New("invalid commission rate")
	ErrProgramPaused         = errors.New("program is paused")
	ErrFeeTooHigh            = errors.New("platform fee too high")
	ErrNoProducts            = errors.New("no products provided")
	ErrInvalidSeeds          = errors.New("derived address mismatch")
	ErrProductRefTooLong     = errors.New("product reference too long")
	ErrArithmeticOverflow    = errors.New("arithmetic overflow")
)

// ErrorClass groups errors into the settlement failure taxonomy.
type ErrorClass string

const (
	ClassAuthorization ErrorClass = "authorization"
	ClassValidation    ErrorClass = "validation"
	ClassState         ErrorClass = "state"
	ClassArithmetic    ErrorClass = "arithmetic"
	ClassInternal      ErrorClass = "internal"
)

// Classify maps an error to its failure class. Unknown errors are internal.
func Classify(err error) ErrorClass {
	switch {
	case errors.Is(err, ErrMissingSignature), errors.Is(err, ErrUnauthorized):
		return ClassAuthorization
	case errors.Is(err, ErrInvalidInstruction),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidCommission),
		errors.Is(err, ErrFeeTooHigh),
		errors.Is(err, ErrNoProducts),
		errors.Is(err, ErrInvalidSeeds),
		errors.Is(err, ErrProductRefTooLong):
		return ClassValidation
	case errors.Is(err, ErrAlreadyInitialized),
		errors.Is(err, ErrNotInitialized),
		errors.Is(err, ErrOrderAlreadyProcessed),
		errors.Is(err, ErrTokenNotSupported),
		errors.Is(err, ErrProgramPaused):
		return ClassState
	case errors.Is(err, ErrArithmeticOverflow):
		return ClassArithmetic
	default:
		return ClassInternal
	}
}
