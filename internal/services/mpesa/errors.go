package mpesa

import "errors"

// Client errors
var (
	ErrMissingCredentials = errors.New("mpesa consumer key and secret are required")
	ErrTokenRequest       = errors.New("failed to obtain access token")
	ErrGatewayRequest     = errors.New("gateway request failed")
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
)
