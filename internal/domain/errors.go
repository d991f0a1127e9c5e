// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates a request failed input validation.
var ErrValidation = errors.New("validation failed")

// ErrRateLimited indicates the scoring backend rejected the call with a
// rate-limit response. Recoverable via bounded backoff retry.
var ErrRateLimited = errors.New("rate limited")

// ErrCredentialExpired indicates the scoring backend rejected the call
// because the credential is no longer valid. Recoverable once via refresh.
var ErrCredentialExpired = errors.New("credential expired")

// ErrMalformedOutput indicates the scoring backend returned a payload that
// violates the scoring contract. Never retried.
var ErrMalformedOutput = errors.New("malformed scorer output")

// ErrRunExpired indicates a write was attempted with a run token whose
// deadline has passed. Late results are discarded, not stored.
var ErrRunExpired = errors.New("run expired")
