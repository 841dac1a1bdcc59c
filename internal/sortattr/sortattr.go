// Package sortattr orders attribute lists the way canonical XML does:
// namespace declarations ahead of ordinary attributes, each group sorted by
// name.
package sortattr

import "sort"

// Interface is sort.Interface minus Less, plus access to the name parts the
// canonical ordering is defined over.
type Interface interface {
	Len() int
	Swap(i, j int)
	Prefix(i int) string
	Local(i int) string
}

// Sort sorts attrs in canonical order.
func Sort(attrs Interface) {
	sort.Stable(order{attrs})
}

type order struct {
	Interface
}

// Less implements the canonical ordering rules: the default namespace
// declaration is least, prefixed declarations follow sorted by the prefix
// they declare, and ordinary attributes come last sorted by prefix then
// local name.
func (o order) Less(i, j int) bool {
	// The default namespace declaration, if present, goes first.
	if o.Prefix(i) == "" && o.Local(i) == "xmlns" {
		return true
	}
	if o.Prefix(j) == "" && o.Local(j) == "xmlns" {
		return false
	}

	// Namespace declarations go ahead of ordinary attributes.
	if o.Prefix(i) == "xmlns" && o.Prefix(j) != "xmlns" {
		return true
	}
	if o.Prefix(i) != "xmlns" && o.Prefix(j) == "xmlns" {
		return false
	}

	// Break ties between two declarations by the prefix being declared.
	if o.Prefix(i) == "xmlns" && o.Prefix(j) == "xmlns" {
		return o.Local(i) < o.Local(j)
	}

	// Ordinary attributes sort by prefix first, local name second.
	if o.Prefix(i) != o.Prefix(j) {
		return o.Prefix(i) < o.Prefix(j)
	}
	return o.Local(i) < o.Local(j)
}
