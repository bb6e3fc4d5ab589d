/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific SDK, remote and gateway failures so callers can
branch on them without parsing messages.
*/
package errs

// 1xxx: Gateway Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrUnauthorized indicates a missing or invalid client token on a gateway request.
	ErrUnauthorized = 1008

	// ErrFeatureDisabled indicates that the requested gateway feature is not configured.
	ErrFeatureDisabled = 1009
)

// 2xxx: Credential and Client Binding Errors
const (
	// ErrInvalidCredential indicates an empty or malformed client id or signing secret.
	ErrInvalidCredential = 2001

	// ErrClientNotConfigured indicates an operation needing signing credentials ran before they were set.
	ErrClientNotConfigured = 2002
)

// 3xxx: Entity Errors
const (
	// ErrMissingIdentifier indicates that an operation requires an id that is absent.
	ErrMissingIdentifier = 3001

	// ErrMissingUserID indicates that a batch permission grant contained a member without an id.
	ErrMissingUserID = 3002

	// ErrEntityNotFound indicates that a successful remote response carried no resolvable id.
	ErrEntityNotFound = 3003

	// ErrInvalidDescriptionConfig indicates a description config without a template id.
	ErrInvalidDescriptionConfig = 3004

	// ErrInvalidGender indicates a gender outside MALE, FEMALE and OTHER.
	ErrInvalidGender = 3005
)

// 4xxx: Remote Provider Errors
const (
	// ErrRemoteOperationFailed indicates a non-2xx/3xx remote response or a transport failure.
	ErrRemoteOperationFailed = 4001
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates that the object storage rejected an avatar operation.
	ErrFileStorageFailed = 5001

	// ErrFileSizeTooLarge indicates that an avatar exceeds the size limit.
	ErrFileSizeTooLarge = 5002

	// ErrFileTypeInvalid indicates that an avatar has a disallowed extension or MIME type.
	ErrFileTypeInvalid = 5003
)
