/*
Package errs defines the application error type and its code table.

errorMap binds every code to its message and HTTP status, standardizing
responses across handlers.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 3xxx: Account, Session, and Security Errors
	ErrPowChallengeRequired: {Code: ErrPowChallengeRequired, Message: "Verification required. Please try again."},
	ErrPowChallengeInvalid:  {Code: ErrPowChallengeInvalid, Message: "Verification failed. Please try again."},
	ErrInvalidUsername:      {Code: ErrInvalidUsername, Message: "Username can only contain underscores, letters or numbers."},
	ErrMissingFields:        {Code: ErrMissingFields, Message: "Username/avatar/name/password cannot be empty."},
	ErrUserAlreadyExists:    {Code: ErrUserAlreadyExists, Message: "Username has already been used."},
	ErrInvalidCredentials:   {Code: ErrInvalidCredentials, Message: "Incorrect username or password!"},
	ErrUnauthorized:         {Code: ErrUnauthorized, Message: "You have not signed in.", Status: http.StatusUnauthorized},
	ErrUserNotFound:         {Code: ErrUserNotFound, Message: "Account not found."},

	// 4xxx: Avatar Storage Errors
	ErrStorageUnavailable: {Code: ErrStorageUnavailable, Message: "Avatar storage is not available."},
	ErrFileSizeTooLarge:   {Code: ErrFileSizeTooLarge, Message: "File is too large."},
	ErrFileTypeInvalid:    {Code: ErrFileTypeInvalid, Message: "Unsupported file type."},

	// 5xxx: Internal System Errors
	ErrUnknown:               {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrTranscriptWriteFailed: {Code: ErrTranscriptWriteFailed, Message: "Message could not be saved. Please try again.", Status: http.StatusInternalServerError},
	ErrTranscriptReadFailed:  {Code: ErrTranscriptReadFailed, Message: "Chat history is unavailable. Please try again.", Status: http.StatusInternalServerError},
}
