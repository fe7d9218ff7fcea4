package handlers

import "strings"

// Generic messages substituted for raw error text.
const (
	MessageSensitive = "An error occurred while processing your request. Please contact support."
	MessageData      = "Unable to retrieve data. Please try again later."
	MessageGeneric   = "An unexpected error occurred. Please try again."
)

var sensitivePatterns = []string{
	"password",
	"passwd",
	"pwd=",
	"connection string",
	"connectionstring",
	"accountkey=",
	"api key",
	"api_key",
	"apikey",
	"secret",
	"token",
	"credential",
	"bearer ",
	"host=",
	"user=",
	"dbname=",
	"database=",
	"server=",
	"sslmode=",
	"postgres://",
	"postgresql://",
	"/home/",
	"/usr/",
	"/etc/",
	`c:\`,
}

var dataPatterns = []string{
	"database",
	"connection",
	"query",
	"sql",
	"relation",
	"constraint",
	"deadlock",
	"timeout",
}

// Sensitive reports whether message contains credentials, connection details,
// or filesystem paths that must never reach a client.
func Sensitive(message string) bool {
	lower := strings.ToLower(message)
	for _, p := range sensitivePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Sanitize maps err to a client-safe message. The raw error is never returned.
func Sanitize(err error) string {
	if err == nil {
		return MessageGeneric
	}

	lower := strings.ToLower(err.Error())
	if Sensitive(lower) {
		return MessageSensitive
	}

	for _, p := range dataPatterns {
		if strings.Contains(lower, p) {
			return MessageData
		}
	}

	return MessageGeneric
}
