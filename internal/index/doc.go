// Package index manages the physical index pair behind each logical name.
//
// Every logical name (products, producers) owns two physical indices,
// primary_<name> and secondary_<name>. At most one of them is behind the
// alias. SelectSlots is the pure rule that picks the slot to rebuild, and
// Manager.ResolveTarget applies it to the live cluster state: it reads the
// alias and, when no alias exists yet, treats an existing primary index as
// live.
//
// Manager is the only component that creates or deletes indices.
package index
