package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrUnauthenticated    ErrCode = "UNAUTHENTICATED"
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrInvalidPassword    ErrCode = "INVALID_PASSWORD"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrCannotDeleteSelf ErrCode = "CANNOT_DELETE_SELF"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrUserNotFound   ErrCode = "USER_NOT_FOUND"
	ErrModuleNotFound ErrCode = "MODULE_NOT_FOUND"
	ErrResultNotFound ErrCode = "RESULT_NOT_FOUND"
	ErrEmailExists    ErrCode = "EMAIL_EXISTS"

	// ─── Training-specific ─────────────────────────────────────────────
	ErrNoQuestions ErrCode = "NO_QUESTIONS"
	ErrNotEligible ErrCode = "NOT_ELIGIBLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrUnauthenticated:
		return "Authentication required."
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrInvalidPassword:
		return "Password is incorrect."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrCannotDeleteSelf:
		return "You cannot delete your own account."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrUserNotFound:
		return "User not found."
	case ErrModuleNotFound:
		return "Module not found."
	case ErrResultNotFound:
		return "No result found for this module."
	case ErrEmailExists:
		return "An account with this email already exists."

	// ─── Training-specific ─────────────────────────────────────────────
	case ErrNoQuestions:
		return "No quiz is available for this module."
	case ErrNotEligible:
		return "You must pass the quiz before generating a certificate."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
