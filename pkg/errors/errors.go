// Package errors provides custom error types for the awsmp system.
// These errors enable programmatic error checking and carry enough
// context for an operator to act on a rejected change.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the awsmp system
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrAccessDenied indicates the profile lacks marketplace permissions
	ErrAccessDenied = errors.New("access denied")

	// ErrUnrecognizedClient indicates the AWS profile is misconfigured
	ErrUnrecognizedClient = errors.New("unrecognized client")

	// ErrRestrictedListing indicates a pricing or instance-type change
	// was attempted on a Restricted listing
	ErrRestrictedListing = errors.New("restricted listing")

	// ErrPricingModelChange indicates an attempted change in pricing-term
	// shape on a published listing
	ErrPricingModelChange = errors.New("pricing model change")

	// ErrFreeToPaid indicates an attempted free to paid conversion
	// without explicit override
	ErrFreeToPaid = errors.New("free to paid conversion")

	// ErrPriceChangeNotAllowed indicates a price delta without explicit override
	ErrPriceChangeNotAllowed = errors.New("price change not allowed")

	// ErrMissingInstanceType indicates the local pricing file omits
	// instance types present on the remote listing
	ErrMissingInstanceType = errors.New("missing instance type")
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure in a listing configuration
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an error from the Marketplace Catalog API
type APIError struct {
	Service string
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error from %s (%s): %s", e.Service, e.Code, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Service, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch e.Code {
	case "AccessDeniedException":
		return target == ErrAccessDenied
	case "UnrecognizedClientException":
		return target == ErrUnrecognizedClient
	case "ResourceNotFoundException":
		return target == ErrNotFound
	case "ValidationException":
		return target == ErrInvalidInput
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(service, code, message string, err error) *APIError {
	return &APIError{Service: service, Code: code, Message: message, Err: err}
}

// ConfigError represents a listing configuration loading error
type ConfigError struct {
	Path        string
	MissingKeys []string
	Err         error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if len(e.MissingKeys) > 0 {
		return fmt.Sprintf("config file %s does not have keys: %s", e.Path, strings.Join(e.MissingKeys, ", "))
	}
	return fmt.Sprintf("config file %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(path string, missingKeys []string, err error) *ConfigError {
	return &ConfigError{Path: path, MissingKeys: missingKeys, Err: err}
}

// PriceDiff is one before/after price delta for a single dimension key.
// An empty Old means the dimension is being added; an empty New means
// it is being removed.
type PriceDiff struct {
	Dimension string `json:"dimension"`
	Old       string `json:"old,omitempty"`
	New       string `json:"new,omitempty"`
}

func (d PriceDiff) String() string {
	switch {
	case d.Old == "":
		return fmt.Sprintf("%s: (new) -> %s", d.Dimension, d.New)
	case d.New == "":
		return fmt.Sprintf("%s: %s -> (removed)", d.Dimension, d.Old)
	default:
		return fmt.Sprintf("%s: %s -> %s", d.Dimension, d.Old, d.New)
	}
}

// RestrictedListingError represents an attempted pricing or instance-type
// change on a Restricted listing
type RestrictedListingError struct {
	ProductID string
}

// Error implements the error interface
func (e *RestrictedListingError) Error() string {
	return fmt.Sprintf("listing %s is restricted and cannot have instance types or pricing changed", e.ProductID)
}

// Is implements errors.Is support
func (e *RestrictedListingError) Is(target error) bool {
	return target == ErrRestrictedListing
}

// NewRestrictedListingError creates a new RestrictedListingError
func NewRestrictedListingError(productID string) *RestrictedListingError {
	return &RestrictedListingError{ProductID: productID}
}

// PricingModelChangeError represents an attempted change in pricing-term
// shape on a published listing
type PricingModelChangeError struct {
	Existing string
	Desired  string
}

// Error implements the error interface
func (e *PricingModelChangeError) Error() string {
	return fmt.Sprintf("pricing model cannot be changed on a published listing: %s -> %s", e.Existing, e.Desired)
}

// Is implements errors.Is support
func (e *PricingModelChangeError) Is(target error) bool {
	return target == ErrPricingModelChange
}

// NewPricingModelChangeError creates a new PricingModelChangeError
func NewPricingModelChangeError(existing, desired string) *PricingModelChangeError {
	return &PricingModelChangeError{Existing: existing, Desired: desired}
}

// FreeToPaidError represents an attempted free to paid conversion
// without explicit override
type FreeToPaidError struct {
	Diffs []PriceDiff
}

// Error implements the error interface
func (e *FreeToPaidError) Error() string {
	return fmt.Sprintf("free listing cannot be converted to paid without explicit override: %s", formatDiffs(e.Diffs))
}

// Is implements errors.Is support
func (e *FreeToPaidError) Is(target error) bool {
	return target == ErrFreeToPaid
}

// NewFreeToPaidError creates a new FreeToPaidError
func NewFreeToPaidError(diffs []PriceDiff) *FreeToPaidError {
	return &FreeToPaidError{Diffs: diffs}
}

// PriceChangeNotAllowedError represents a price delta without explicit
// override. It carries the full before/after diff list for operator review.
type PriceChangeNotAllowedError struct {
	Diffs []PriceDiff
}

// Error implements the error interface
func (e *PriceChangeNotAllowedError) Error() string {
	return fmt.Sprintf("price changes require explicit override: %s", formatDiffs(e.Diffs))
}

// Is implements errors.Is support
func (e *PriceChangeNotAllowedError) Is(target error) bool {
	return target == ErrPriceChangeNotAllowed
}

// NewPriceChangeNotAllowedError creates a new PriceChangeNotAllowedError
func NewPriceChangeNotAllowedError(diffs []PriceDiff) *PriceChangeNotAllowedError {
	return &PriceChangeNotAllowedError{Diffs: diffs}
}

// MissingInstanceTypeError indicates the desired instance types omit one
// or more types present on the remote listing
type MissingInstanceTypeError struct {
	InstanceTypes []string
}

// Error implements the error interface
func (e *MissingInstanceTypeError) Error() string {
	return fmt.Sprintf("the following instance types are missing from your pricing configuration: %s",
		strings.Join(e.InstanceTypes, ", "))
}

// Is implements errors.Is support
func (e *MissingInstanceTypeError) Is(target error) bool {
	return target == ErrMissingInstanceType
}

// NewMissingInstanceTypeError creates a new MissingInstanceTypeError
func NewMissingInstanceTypeError(instanceTypes []string) *MissingInstanceTypeError {
	return &MissingInstanceTypeError{InstanceTypes: instanceTypes}
}

func formatDiffs(diffs []PriceDiff) string {
	parts := make([]string, len(diffs))
	for i, d := range diffs {
		parts[i] = d.String()
	}
	return strings.Join(parts, "; ")
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPricingGuardError checks if an error comes from the pricing change guard
func IsPricingGuardError(err error) bool {
	return errors.Is(err, ErrRestrictedListing) ||
		errors.Is(err, ErrPricingModelChange) ||
		errors.Is(err, ErrFreeToPaid) ||
		errors.Is(err, ErrPriceChangeNotAllowed)
}

// Is reports whether any error in err's tree matches target.
// It's an alias for the standard library errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
// It's an alias for the standard library errors.As for convenience.
var As = errors.As
