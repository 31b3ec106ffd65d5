// Package content models content-artifact resolution.
package content

import (
	"strings"
)

// MIME types that drive artifact resolution.
const (
	MimePDF        = "application/pdf"
	MimeECML       = "application/vnd.ekstep.ecml-archive"
	MimeCollection = "application/vnd.ekstep.content-collection"
)

// IDPrefix is the platform's content identifier prefix.
const IDPrefix = "do_"

// Request is a validated content-resolution request.
type Request struct {
	contentID string
}

// NewRequest wraps a content identifier that already passed validation.
func NewRequest(contentID string) Request { return Request{contentID: contentID} }

// ContentID returns the identifier to resolve.
func (r *Request) ContentID() string { return r.contentID }

// CheckID returns the problems with id, or nil when it follows the
// "do_" + digits convention.
func CheckID(id string) []string {
	switch {
	case strings.TrimSpace(id) == "":
		return []string{"content_id is required"}
	case !strings.HasPrefix(id, IDPrefix):
		return []string{"content_id must start with '" + IDPrefix + "'"}
	case len(id) == len(IDPrefix) || !allDigits(id[len(IDPrefix):]):
		return []string{"content_id must be '" + IDPrefix + "' followed by digits"}
	}
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
