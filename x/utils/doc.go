// Package utils holds the decorators every transaction passes through:
// panic recovery, logging and the savepoint that makes a message handler
// all or nothing.
package utils
