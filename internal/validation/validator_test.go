// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package validation

import (
	"strings"
	"testing"
)

// ===================================================================================================
// Singleton Validator Tests
// ===================================================================================================

func TestGetValidator_Singleton(t *testing.T) {
	// Test that GetValidator returns the same instance
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}

	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

// ===================================================================================================
// ValidateStruct Tests
// ===================================================================================================

// searchPayload mirrors the search request contract for validation tests.
type searchPayload struct {
	Query string `validate:"required,notblank,max=500"`
	TopK  *int   `validate:"omitempty,min=1"`
}

// recipePayload mirrors the recipe create contract.
type recipePayload struct {
	Title       string   `validate:"required,max=500"`
	Ingredients []string `validate:"required,min=1,dive,required"`
	Directions  []string `validate:"required,min=1,dive,required"`
	Link        string   `validate:"omitempty,url"`
}

func intPtr(v int) *int { return &v }

func TestValidateStruct_ValidSearch(t *testing.T) {
	tests := []struct {
		name  string
		input searchPayload
	}{
		{"query only", searchPayload{Query: "spicy noodle soup"}},
		{"query with top_k", searchPayload{Query: "pasta", TopK: intPtr(10)}},
		{"query at max length", searchPayload{Query: strings.Repeat("a", 500)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_InvalidSearch(t *testing.T) {
	tests := []struct {
		name      string
		input     searchPayload
		wantField string
		wantTag   string
	}{
		{
			name:      "missing query",
			input:     searchPayload{},
			wantField: "Query",
			wantTag:   "required",
		},
		{
			name:      "blank query",
			input:     searchPayload{Query: "   "},
			wantField: "Query",
			wantTag:   "notblank",
		},
		{
			name:      "query too long",
			input:     searchPayload{Query: strings.Repeat("a", 501)},
			wantField: "Query",
			wantTag:   "max",
		},
		{
			name:      "zero top_k",
			input:     searchPayload{Query: "pasta", TopK: intPtr(0)},
			wantField: "TopK",
			wantTag:   "min",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}

			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestValidateStruct_RecipePayload(t *testing.T) {
	valid := recipePayload{
		Title:       "Shakshuka",
		Ingredients: []string{"eggs", "tomatoes"},
		Directions:  []string{"Simmer sauce.", "Poach eggs."},
		Link:        "https://example.com/shakshuka",
	}
	if err := ValidateStruct(&valid); err != nil {
		t.Errorf("valid recipe rejected: %v", err)
	}

	// Empty ingredient entry fails the dive validation
	invalid := valid
	invalid.Ingredients = []string{"eggs", ""}
	if err := ValidateStruct(&invalid); err == nil {
		t.Error("empty ingredient entry accepted")
	}

	// Bad link scheme
	invalid = valid
	invalid.Link = "not-a-url"
	if err := ValidateStruct(&invalid); err == nil {
		t.Error("malformed link accepted")
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	input := recipePayload{} // everything missing

	err := ValidateStruct(&input)
	if err == nil {
		t.Fatal("expected validation errors, got nil")
	}
	if len(err.Errors()) < 3 {
		t.Errorf("expected at least 3 errors, got %d", len(err.Errors()))
	}

	// Combined message joins individual errors
	msg := err.Error()
	if !strings.Contains(msg, "Title") || !strings.Contains(msg, "Ingredients") {
		t.Errorf("combined message missing fields: %q", msg)
	}
}

// ===================================================================================================
// ToAPIError Tests
// ===================================================================================================

func TestToAPIError_SingleError(t *testing.T) {
	input := searchPayload{Query: ""}

	err := ValidateStruct(&input)
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "Query is required" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "Query is required")
	}
	if apiErr.Details["field"] != "Query" {
		t.Errorf("Details[field] = %v, want Query", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	input := recipePayload{}

	err := ValidateStruct(&input)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}

	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] has unexpected type %T", apiErr.Details["fields"])
	}
	if len(fields) < 3 {
		t.Errorf("expected at least 3 field entries, got %d", len(fields))
	}
}

func TestToAPIError_Empty(t *testing.T) {
	ve := &RequestValidationError{}
	apiErr := ve.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" || apiErr.Message != "Validation failed" {
		t.Errorf("empty error -> (%q, %q)", apiErr.Code, apiErr.Message)
	}
}

// ===================================================================================================
// Message Translation Tests
// ===================================================================================================

func TestTranslateError_Messages(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		wantMsg string
	}{
		{
			name: "required",
			input: &struct {
				Query string `validate:"required"`
			}{},
			wantMsg: "Query is required",
		},
		{
			name: "notblank",
			input: &struct {
				Query string `validate:"notblank"`
			}{Query: "  "},
			wantMsg: "Query must not be blank",
		},
		{
			name: "max string",
			input: &struct {
				Title string `validate:"max=3"`
			}{Title: "too long"},
			wantMsg: "Title must be at most 3 characters",
		},
		{
			name: "min number",
			input: &struct {
				TopK int `validate:"min=1"`
			}{TopK: 0},
			wantMsg: "TopK must be at least 1",
		},
		{
			name: "oneof",
			input: &struct {
				Backend string `validate:"oneof=badger weaviate"`
			}{Backend: "chroma"},
			wantMsg: "Backend must be one of: badger weaviate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := err.Errors()[0].Error(); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}
