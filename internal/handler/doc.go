// Package handler implements the HTTP API for the Shipperizer editor.
//
// Every mutating endpoint turns its request into one session command, so
// each successful call is exactly one undo step. Responses carry the full
// session state so a client can re-render without a second round trip.
//
// # API Design
//
// All handlers follow REST conventions:
// - GET for retrieval
// - POST for creation and actions
// - PUT for updates
// - DELETE for removal
//
// Request bodies are validated before a command is built.
//
// # Response Format
//
// Success responses return {changed, state}. Error responses return JSON
// with {error, details} structure and a status derived from the error type:
// 404 for unknown ids, 409 for duplicate ids or an incomplete selection, 422
// for malformed imports and 400 for other rejected input.
//
// # Server-Sent Events
//
// The /events endpoint streams every state change to connected browsers.
package handler
