package errors

import "errors"

var (
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInsufficientFunds  = errors.New("insufficient balance")
	ErrInvalidReturnRate  = errors.New("daily return rate must be positive")
	ErrBelowMinInvestment = errors.New("amount is below the option minimum investment")
	ErrNameRequired       = errors.New("name is required")
	ErrFieldsRequired     = errors.New("all fields are required")

	ErrUserNotFound        = errors.New("user not found")
	ErrProfileNotFound     = errors.New("user profile not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvestmentNotFound  = errors.New("investment not found")
	ErrOptionNotFound      = errors.New("investment option not found")

	ErrAlreadyProcessed = errors.New("transaction already processed")
	ErrAlreadyPending   = errors.New("transaction is already pending")
	ErrForbidden        = errors.New("operation requires elevated privileges")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidToken       = errors.New("invalid token")

	ErrNilTransaction = errors.New("transaction is nil")
	ErrNilInvestment  = errors.New("investment is nil")
	ErrNilUser        = errors.New("user is nil")
)
