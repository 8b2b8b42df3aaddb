package upstream

import (
	"errors"
	"fmt"
	"time"

	apperrors "tonetranslate-go/internal/errors"
)

// ErrCredentialNotConfigured is matched by every *CredentialError.
var ErrCredentialNotConfigured = errors.New("credential not configured")

// ErrNoTranslation means the vendor answered but returned no completion text.
var ErrNoTranslation = errors.New("no translation received")

// TranslationFailedPrefix starts every TranslationError message.
const TranslationFailedPrefix = "Translation failed: "

// CredentialError is returned at construction when the vendor key is absent.
type CredentialError struct {
	Kind Kind
}

func NewCredentialError(kind Kind) *CredentialError { return &CredentialError{Kind: kind} }

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s API key is not configured", e.Kind.Vendor())
}

func (e *CredentialError) Is(target error) bool { return target == ErrCredentialNotConfigured }

type noTranslationError struct{ kind Kind }

func (e noTranslationError) Error() string {
	return "No translation received from " + e.kind.Label()
}

func (e noTranslationError) Is(target error) bool { return target == ErrNoTranslation }

// NoTranslation builds the empty-completion error for kind.
func NoTranslation(kind Kind) error { return noTranslationError{kind: kind} }

// TranslationError wraps every failure of Provider.Translate. Cause is either a
// normalized *apperrors.APIError or an ErrNoTranslation error.
type TranslationError struct {
	Kind  Kind
	Msg   string
	Cause error
}

// Wrap normalizes err into a *TranslationError. Errors already wrapped are
// returned unchanged; nil stays nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var te *TranslationError
	if errors.As(err, &te) {
		return te
	}
	return &TranslationError{Kind: kind, Msg: err.Error(), Cause: err}
}

func (e *TranslationError) Error() string { return TranslationFailedPrefix + e.Msg }

func (e *TranslationError) Unwrap() error { return e.Cause }

// Reason is the message without the "Translation failed: " prefix.
func (e *TranslationError) Reason() string { return e.Msg }

// Retryable reports whether the cause is a transient vendor failure.
func (e *TranslationError) Retryable() bool {
	var apiErr *apperrors.APIError
	if errors.As(e.Cause, &apiErr) {
		return apiErr.IsRetryable()
	}
	return false
}

// RetryAfter returns the vendor Retry-After hint carried by err, zero when absent.
func RetryAfter(err error) time.Duration {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		return time.Duration(apiErr.GetRetryAfter()) * time.Second
	}
	return 0
}

// IsCritical reports a rejected or unauthorized credential.
func IsCritical(err error) bool {
	var apiErr *apperrors.APIError
	return errors.As(err, &apiErr) && apiErr.IsCritical()
}

// IsRetryable is the package-level form of (*TranslationError).Retryable.
func IsRetryable(err error) bool {
	var te *TranslationError
	if errors.As(err, &te) {
		return te.Retryable()
	}
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}
	return false
}
