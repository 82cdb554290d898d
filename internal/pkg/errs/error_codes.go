/*
Package errs defines the application error type and its code table.

Error codes identify specific business or system failures both inside
the server and on the wire.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates an unsupported Content-Type header.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a malformed JSON request body.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates the request rate exceeded the limit.
	ErrRateLimitExceeded = 1005
)

// 3xxx: Account, Session, and Security Errors
const (
	// ErrPowChallengeRequired indicates a missing or absent Proof-of-Work token.
	ErrPowChallengeRequired = 3001

	// ErrPowChallengeInvalid indicates the submitted PoW proof failed validation.
	ErrPowChallengeInvalid = 3002

	// ErrInvalidUsername indicates a username outside the word-character rule.
	ErrInvalidUsername = 3101

	// ErrMissingFields indicates a blank registration field.
	ErrMissingFields = 3102

	// ErrUserAlreadyExists indicates the username is already registered.
	ErrUserAlreadyExists = 3103

	// ErrInvalidCredentials indicates a wrong username or password.
	ErrInvalidCredentials = 3104

	// ErrUnauthorized indicates a missing or expired session.
	ErrUnauthorized = 3105

	// ErrUserNotFound indicates the account record is gone.
	ErrUserNotFound = 3106
)

// 4xxx: Avatar Storage Errors
const (
	// ErrStorageUnavailable indicates no object storage is configured.
	ErrStorageUnavailable = 4001

	// ErrFileSizeTooLarge indicates the avatar exceeds the size limit.
	ErrFileSizeTooLarge = 4002

	// ErrFileTypeInvalid indicates a file name or MIME type outside the allow list.
	ErrFileTypeInvalid = 4003
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified server internal error.
	ErrUnknown = 5000

	// ErrTranscriptWriteFailed indicates the chat transcript could not be persisted.
	ErrTranscriptWriteFailed = 5001

	// ErrTranscriptReadFailed indicates the chat transcript could not be loaded.
	ErrTranscriptReadFailed = 5002
)
