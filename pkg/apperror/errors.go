package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet Lifecycle (WALLET) ----

func ErrWalletNotFound(address string) *AppError {
	return New("WALLET_001", fmt.Sprintf("Wallet %q not found", address), http.StatusNotFound)
}

func ErrWalletBlocked(address string) *AppError {
	return New("WALLET_002", fmt.Sprintf("Wallet %q is blocked", address), http.StatusForbidden)
}

func ErrWalletHasHistory(address string) *AppError {
	return New("WALLET_003", fmt.Sprintf("Wallet %q has movement history and cannot be removed", address), http.StatusConflict)
}

func ErrWalletExists(address string) *AppError {
	return New("WALLET_004", fmt.Sprintf("Wallet %q already exists", address), http.StatusConflict)
}

// ---- Currencies (CCY) ----

func ErrCurrencyNotFound(code string) *AppError {
	return New("CCY_001", fmt.Sprintf("Currency %q not supported", code), http.StatusNotFound)
}

// ---- Ledger Business Rules (LEDGER) ----

func ErrInvalidAmount(message string) *AppError {
	if message == "" {
		message = "Invalid amount"
	}
	return New("LEDGER_001", message, http.StatusBadRequest)
}

func ErrAmountOutOfRange() *AppError {
	return New("LEDGER_002", "Amount exceeds 18 total digits or 8 fractional digits", http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return New("LEDGER_003", "Insufficient balance", http.StatusPaymentRequired)
}

func ErrSameCurrencyConversion() *AppError {
	return New("LEDGER_004", "Source and destination currencies must differ", http.StatusBadRequest)
}

func ErrSelfTransfer() *AppError {
	return New("LEDGER_005", "Source and destination wallets must differ", http.StatusBadRequest)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("LEDGER_006", "Balance lock acquisition timed out", http.StatusServiceUnavailable, err)
}

func ErrRateUnavailable(from, to string) *AppError {
	return New("LEDGER_007", fmt.Sprintf("No exchange rate available for %s/%s", from, to), http.StatusUnprocessableEntity)
}

// ---- System & Infrastructure (SYS) ----

func ErrStorageFailure(err error) *AppError {
	return Wrap("SYS_001", "Internal storage error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a LEDGER_001-style validation error.
func Validation(message string) *AppError {
	return New("LEDGER_001", message, http.StatusBadRequest)
}
