package cart

import (
	"sort"
	"strings"
)

const complementSep = "|"

// LineKey identifies a cart line. A plain line is keyed by its product alone;
// a combo line also carries its sorted complement ids, so the same burger with
// a different drink is a different line. Keys compare with ==.
type LineKey struct {
	ProductID   string `json:"product_id"`
	Combo       bool   `json:"is_combo"`
	Complements string `json:"complements,omitempty"`
}

func Single(productID string) LineKey {
	return LineKey{ProductID: productID}
}

func Combo(productID string, complementIDs ...string) LineKey {
	ids := append([]string(nil), complementIDs...)
	sort.Strings(ids)
	return LineKey{ProductID: productID, Combo: true, Complements: strings.Join(ids, complementSep)}
}

// ID is the line id used by callers together with the combo flag.
func (k LineKey) ID() string {
	if k.Complements == "" {
		return k.ProductID
	}
	return k.ProductID + complementSep + k.Complements
}

func (k LineKey) String() string {
	if k.Combo {
		return "combo:" + k.ID()
	}
	return k.ID()
}

// ComplementIDs returns the complement ids in key order.
func (k LineKey) ComplementIDs() []string {
	if k.Complements == "" {
		return nil
	}
	return strings.Split(k.Complements, complementSep)
}

func (k LineKey) matches(lineID string, isCombo bool) bool {
	return k.Combo == isCombo && k.ID() == lineID
}
