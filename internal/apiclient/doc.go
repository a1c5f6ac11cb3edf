// Package apiclient implements the HTTP client the CLI uses to talk to a
// running stockdeskd daemon. It mirrors the JSON API served by the daemon
// and returns the shared transport DTOs from the api package.
package apiclient
