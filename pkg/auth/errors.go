package auth

import "errors"

var (
	// ErrAuthorizationFailed reports that a step of the interactive login
	// could not be completed. The wrapped error carries the step detail.
	ErrAuthorizationFailed = errors.New("authorization failed")

	// ErrTermsAndConditions reports that the identity provider redirected
	// to a terms-and-conditions acceptance page instead of completing the
	// login. The account owner has to accept them in a browser first, so
	// retrying does not help.
	ErrTermsAndConditions = errors.New("terms and conditions must be accepted manually")

	// ErrNotAuthorized reports that an authenticated operation was
	// attempted before a successful Authorize call.
	ErrNotAuthorized = errors.New("not authorized, call Authorize first")

	// ErrNoCSRFState reports a login page without the expected embedded
	// anti-forgery state.
	ErrNoCSRFState = errors.New("no csrf state found in page")
)
