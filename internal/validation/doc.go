// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with custom validators and user-friendly error
// messages. It integrates with the application's API error format for consistent
// error responses.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Comprehensive error translation to human-readable messages
//   - APIError conversion matching the application's error format
//   - Built-in validator support (email, url, oneof, etc.)
//   - Custom notblank validator for whitespace-only input
//   - Future v11 compatibility with WithRequiredStructEnabled
//
// # Quick Start
//
//	type SearchRequest struct {
//	    Query string `json:"query" validate:"required,notblank,max=500"`
//	    TopK  *int   `json:"top_k" validate:"omitempty,min=1"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    var req SearchRequest
//	    if err := json.Decode(r.Body, &req); err != nil {
//	        // handle decode error
//	    }
//
//	    if verr := validation.ValidateStruct(&req); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	        return
//	    }
//
//	    // proceed with valid request
//	}
//
// # Common Validation Tags
//
// String validations:
//   - required: Field must not be empty
//   - notblank: Field must not be empty after trimming whitespace
//   - min=n: Minimum length n characters
//   - max=n: Maximum length n characters
//   - url: Valid URL format
//   - hexadecimal: Hex-encoded string (document identifiers)
//
// Numeric validations:
//   - gte=n: Greater than or equal to n
//   - lte=n: Less than or equal to n
//   - gt=n: Greater than n
//   - lt=n: Less than n
//   - min=n: Minimum value n
//   - max=n: Maximum value n
//
// Enum validations:
//   - oneof=a b c: Must be one of the specified values
//
// Collection validations:
//   - dive: Apply subsequent tags to each element of a slice
//
// # Error Types
//
// ValidationError represents a single field validation failure:
//
//	type ValidationError struct {
//	    Field()   string      // Struct field name
//	    Tag()     string      // Validation tag that failed
//	    Param()   string      // Tag parameter (e.g., "500" for max=500)
//	    Value()   interface{} // Actual value that failed
//	    Error()   string      // Human-readable message
//	}
//
// RequestValidationError aggregates multiple field errors:
//
//	type RequestValidationError struct {
//	    Errors() []ValidationError
//	    Error()  string           // Combined message
//	    ToAPIError() *APIError    // Convert to API error format
//	}
//
// # API Error Integration
//
// The ToAPIError method produces errors matching the application format:
//
//	// Single field error
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Query is required",
//	    "details": {"field": "Query", "tag": "required", "value": ""}
//	}
//
//	// Multiple field errors
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Title: is required; Ingredients: is required",
//	    "details": {
//	        "fields": [
//	            {"field": "Title", "tag": "required", "message": "..."},
//	            {"field": "Ingredients", "tag": "required", "message": "..."}
//	        ]
//	    }
//	}
//
// # Error Message Translation
//
// Human-readable messages are generated for common validation tags:
//
//	required   -> "Query is required"
//	notblank   -> "Query must not be blank"
//	min=1      -> "TopK must be at least 1"
//	max=500    -> "Query must be at most 500 characters"
//	gte=1      -> "Limit must be greater than or equal to 1"
//	lte=50     -> "Limit must be less than or equal to 50"
//	oneof=a b  -> "Backend must be one of: a b"
//	url        -> "Link must be a valid URL"
//
// # Struct Tag Examples
//
// Search request validation:
//
//	type SearchRequest struct {
//	    Query string `validate:"required,notblank,max=500"`
//	    TopK  *int   `validate:"omitempty,min=1"`
//	}
//
// Recipe create/update validation:
//
//	type RecipeInput struct {
//	    Title       string   `validate:"required,max=500"`
//	    Ingredients []string `validate:"required,min=1,dive,required"`
//	    Directions  []string `validate:"required,min=1,dive,required"`
//	    Link        string   `validate:"omitempty,url,max=2048"`
//	}
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use:
//
//	validate := validation.GetValidator()  // Thread-safe
//	err := validation.ValidateStruct(&req) // Thread-safe
//
// # Performance
//
// The validator caches struct reflection information:
//   - First validation of a struct type: ~1ms (reflection + caching)
//   - Subsequent validations: ~10us (cached)
//   - Memory: ~500 bytes per cached struct type
//
// # See Also
//
//   - internal/api: Request handlers using validation
//   - github.com/go-playground/validator/v10: Underlying library
package validation
