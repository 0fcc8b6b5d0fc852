// Package pagination implements the keyset cursor used by catalog listings.
// Product pages are ordered by (created_at DESC, id DESC); the cursor is the
// last row of the previous page, handed back to the client as an opaque
// base64 token so storefront "load more" requests resume exactly where the
// page ended, even while sellers insert new products.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the product-grid page size when the client sends none.
	DefaultLimit = 25
	// MaxLimit bounds a single listing request regardless of client input.
	MaxLimit = 100

	cursorSeparator = "|"
)

// Cursor is the keyset position of the last product on a page. ID breaks
// ties between products created in the same nanosecond.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// NormalizeLimit clamps a requested page size into [1, MaxLimit], mapping
// zero and negatives to DefaultLimit.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer is the normalized limit plus one sentinel row; fetching it
// tells the repo whether a next page exists without a second count query.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor serializes the position as base64("<rfc3339nano>|<uuid>").
func EncodeCursor(c Cursor) string {
	token := c.CreatedAt.UTC().Format(time.RFC3339Nano) + cursorSeparator + c.ID.String()
	return base64.StdEncoding.EncodeToString([]byte(token))
}

// ParseCursor inverts EncodeCursor. An empty value means "first page" and
// yields a nil cursor; anything else malformed is a client error.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	createdPart, idPart, found := strings.Cut(string(raw), cursorSeparator)
	if !found {
		return nil, fmt.Errorf("invalid cursor format")
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdPart)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}

	return &Cursor{CreatedAt: createdAt, ID: id}, nil
}
