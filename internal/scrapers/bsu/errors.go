package bsu

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration        = errors.New("bsu scraper: invalid configuration")
	ErrInvalidCredentials   = errors.New("bsu scraper: invalid credentials")
	ErrInvalidCaptcha       = errors.New("bsu scraper: invalid captcha")
	ErrPageFormat           = errors.New("bsu scraper: unexpected page format")
	ErrUnrecognizedResponse = errors.New("bsu scraper: unrecognized login response")
)

// ConfigurationError is returned by NewSession when the identity is incomplete.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration.Error(), e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// InvalidCredentialsError carries the portal's own message for a rejected
// surname / student id / contract number combination.
type InvalidCredentialsError struct {
	Message string
}

func (e *InvalidCredentialsError) Error() string {
	return e.Message
}

func (e *InvalidCredentialsError) Is(target error) bool {
	return target == ErrInvalidCredentials
}

// InvalidCaptchaError carries the portal's own message for a wrong captcha answer.
type InvalidCaptchaError struct {
	Message string
}

func (e *InvalidCaptchaError) Error() string {
	return e.Message
}

func (e *InvalidCaptchaError) Is(target error) bool {
	return target == ErrInvalidCaptcha
}

// PageFormatError means an expected piece of markup was missing. Either the
// portal changed its pages or it returned something other than what was
// asked for (ex. the login page after the session expired).
type PageFormatError struct {
	Page   string
	Detail string
}

func (e *PageFormatError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrPageFormat.Error(), e.Page, e.Detail)
}

func (e *PageFormatError) Is(target error) bool {
	return target == ErrPageFormat
}

// UnrecognizedResponseError is returned when the login response has neither
// an error marker nor a logout link.
type UnrecognizedResponseError struct {
	Page string
}

func (e *UnrecognizedResponseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnrecognizedResponse.Error(), e.Page)
}

func (e *UnrecognizedResponseError) Is(target error) bool {
	return target == ErrUnrecognizedResponse
}
