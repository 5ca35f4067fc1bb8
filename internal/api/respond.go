package api

import (
	"encoding/json"
	"net/http"
)

// Meta carries pagination info on list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// FieldError is a single validation failure on a named input field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	Data    any          `json:"data"`
	Meta    *Meta        `json:"meta,omitempty"`
	Errors  []FieldError `json:"errorSources,omitempty"`
}

func write(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func OK(w http.ResponseWriter, message string, data any) {
	write(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func Created(w http.ResponseWriter, message string, data any) {
	write(w, http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

func OKWithMeta(w http.ResponseWriter, message string, data any, meta Meta) {
	write(w, http.StatusOK, envelope{Success: true, Message: message, Data: data, Meta: &meta})
}

func OKWithToken(w http.ResponseWriter, message string, token string, data any) {
	write(w, http.StatusOK, envelope{Success: true, Message: message, Token: token, Data: data})
}

func CreatedWithToken(w http.ResponseWriter, message string, token string, data any) {
	write(w, http.StatusCreated, envelope{Success: true, Message: message, Token: token, Data: data})
}

func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Success: false, Message: message})
}

func ValidationError(w http.ResponseWriter, message string, fields []FieldError) {
	write(w, http.StatusBadRequest, envelope{Success: false, Message: message, Errors: fields})
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, message)
}

func Internal(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}

func MethodNotAllowed(w http.ResponseWriter) {
	Error(w, http.StatusMethodNotAllowed, "method not allowed")
}
