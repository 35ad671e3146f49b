package circulation

import (
	"strings"
)

// Common identifier types reported by vendors.
const (
	IdentifierISBN      = "ISBN"
	IdentifierOverdrive = "Overdrive ID"
	IdentifierAxis360   = "Axis 360 ID"
	IdentifierBiblio    = "Bibliotheca ID"
	IdentifierURI       = "URI"
)

// Identifier names a title within a data source. Together with the
// collection it is how a vendor record is matched to a local pool.
type Identifier struct {
	Type  string
	Value string
}

func NewIdentifier(typ, value string) Identifier {
	return Identifier{Type: strings.TrimSpace(typ), Value: strings.TrimSpace(value)}
}

func (i Identifier) IsZero() bool {
	return i.Type == "" && i.Value == ""
}

func (i Identifier) String() string {
	return i.Type + "/" + i.Value
}
