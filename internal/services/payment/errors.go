package payment

import "errors"

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidPhoneNumber  = errors.New("invalid phone number")
	ErrBusinessRequired    = errors.New("business id is required")
	ErrAccessDenied        = errors.New("access denied for this business")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
	ErrUnknownCallback     = errors.New("no payment matches this callback")
	ErrAlreadyFinalized    = errors.New("payment already finalized")
	ErrPaymentNotInitiated = errors.New("payment is not awaiting confirmation")
)
