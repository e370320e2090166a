package errors

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// maxIDLength bounds node and user identifiers accepted from clients.
const maxIDLength = 128

// reservedNodeIDPrefix starts the ids of synthetic insertion nodes in a
// compiled layout.
const reservedNodeIDPrefix = "affordance:"

// ValidateNodeID validates a milestone id supplied by a client.
//
// The rules are intentionally conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - No path separators (ids appear in URLs and cache paths)
//   - Maximum length of 128 characters
//   - No "affordance:" prefix, which layouts reserve for insertion nodes
func ValidateNodeID(id string) error {
	if err := validateID("node id", id); err != nil {
		return err
	}
	if strings.HasPrefix(id, reservedNodeIDPrefix) {
		return New(ErrCodeInvalidInput, "node id cannot start with %q", reservedNodeIDPrefix)
	}
	return nil
}

// userIDRegex matches user ids: letters, digits, dash, underscore, dot and @.
var userIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@-]*$`)

// ValidateUserID validates the user scope of an API request.
func ValidateUserID(id string) error {
	if err := validateID("user id", id); err != nil {
		return err
	}
	if !userIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid user id: %q", id)
	}
	return nil
}

func validateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", kind, maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid characters", kind)
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "%s cannot contain path separators", kind)
	}
	return nil
}

// ValidateFormat checks an output format against the supported set.
func ValidateFormat(format string, supported []string) error {
	if slices.Contains(supported, format) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(supported, ", "))
}
