/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
SDK errors and gateway HTTP responses.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every error code.
// Messages containing printf verbs are formatted with the details passed to NewError.
var errorMap = map[int]CustomError{
	// 1xxx: Gateway Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrUnauthorized:         {Code: ErrUnauthorized, Message: "A valid client token is required.", Status: http.StatusUnauthorized},
	ErrFeatureDisabled:      {Code: ErrFeatureDisabled, Message: "%s is not configured.", Status: http.StatusNotImplemented},

	// 2xxx: Credential and Client Binding Errors
	ErrInvalidCredential:   {Code: ErrInvalidCredential, Message: "Invalid client credential: %s."},
	ErrClientNotConfigured: {Code: ErrClientNotConfigured, Message: "Client not configured."},

	// 3xxx: Entity Errors
	ErrMissingIdentifier:        {Code: ErrMissingIdentifier, Message: "%s id is required.", Status: http.StatusBadRequest},
	ErrMissingUserID:            {Code: ErrMissingUserID, Message: "User id is required.", Status: http.StatusBadRequest},
	ErrEntityNotFound:           {Code: ErrEntityNotFound, Message: "%s not found.", Status: http.StatusNotFound},
	ErrInvalidDescriptionConfig: {Code: ErrInvalidDescriptionConfig, Message: "Template ID is required.", Status: http.StatusBadRequest},
	ErrInvalidGender:            {Code: ErrInvalidGender, Message: "Invalid gender %q.", Status: http.StatusBadRequest},

	// 4xxx: Remote Provider Errors
	ErrRemoteOperationFailed: {Code: ErrRemoteOperationFailed, Message: "%s failed. Status: %d", Status: http.StatusBadGateway},

	// 5xxx: Internal System Errors
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again."},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File storage operation failed."},
	ErrFileSizeTooLarge:  {Code: ErrFileSizeTooLarge, Message: "File is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrFileTypeInvalid:   {Code: ErrFileTypeInvalid, Message: "Unsupported file type.", Status: http.StatusBadRequest},
}
