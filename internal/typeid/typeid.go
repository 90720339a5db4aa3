package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixArray     = "arr"
	PrefixStructure = "struct"
	PrefixShape     = "shape"
	PrefixText      = "text"
)

// New returns a fresh id with the given prefix. Ids are UUIDv7 based, so
// ids generated later sort after ids generated earlier.
func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewArrayID() string     { return New(PrefixArray) }
func NewStructureID() string { return New(PrefixStructure) }
func NewShapeID() string     { return New(PrefixShape) }
func NewTextID() string      { return New(PrefixText) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
