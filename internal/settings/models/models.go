// Package models holds the backend's default-setting records.
package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Type is the declared kind of a setting's value.
type Type string

const (
	TypeJSON    Type = "json"
	TypeArray   Type = "array"
	TypeBoolean Type = "boolean"
	TypeInteger Type = "integer"
	TypeFloat   Type = "float"
	TypeString  Type = "string"
)

// Types lists the choices offered when creating a setting.
var Types = []Type{TypeJSON, TypeArray, TypeBoolean, TypeInteger, TypeFloat, TypeString}

// Complex reports whether values of t are edited as a tree.
func (t Type) Complex() bool {
	return t == TypeJSON || t == TypeArray
}

type Setting struct {
	ID          string          `json:"id"`
	Key         string          `json:"key"`
	Type        Type            `json:"type"`
	Value       json.RawMessage `json:"value"`
	Description *string         `json:"description"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   string          `json:"created_at,omitempty"`
	UpdatedAt   string          `json:"updated_at,omitempty"`
}

// Matches is the case-insensitive key/description filter. An empty term
// matches everything.
func (s Setting) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(s.Key), term) {
		return true
	}
	return s.Description != nil && strings.Contains(strings.ToLower(*s.Description), term)
}

// Unwrap replaces a json/array value the backend delivered as a JSON string
// with the document it contains. Values that do not parse stay as they are.
func (s Setting) Unwrap() Setting {
	if !s.Type.Complex() || len(s.Value) == 0 || s.Value[0] != '"' {
		return s
	}
	var inner string
	if err := json.Unmarshal(s.Value, &inner); err != nil {
		return s
	}
	if trimmed := bytes.TrimSpace([]byte(inner)); json.Valid(trimmed) {
		s.Value = json.RawMessage(trimmed)
	}
	return s
}

// Create is the form for a new setting. Value is the operator's raw text.
type Create struct {
	Key         string
	Type        Type
	Value       string
	Description string
	IsActive    bool
}

// ListResponse is the default-settings envelope.
type ListResponse struct {
	Items []Setting `json:"items"`
}
