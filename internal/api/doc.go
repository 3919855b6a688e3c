// Package api exposes the REST surface of the wallet agent: submitting
// conversational messages, listing the registered capabilities, and reading
// the invocation journal.
package api
