// Package pacttest provides mocks and helpers for testing code built on top
// of pact.
package pacttest
