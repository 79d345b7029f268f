// Package reindex orchestrates a blue/green rebuild of one logical index.
//
// Every logical name owns two physical slots, primary_<name> and
// secondary_<name>. A run builds the slot that is not serving traffic,
// fills it from the relational source, moves the alias onto it and removes
// the old slot:
//
//	START → TARGET_RESOLVED → INDEX_ENSURED → EXTRACTED → TRANSFORMED →
//	LOADED → ALIASED → STALE_DELETED → DONE
//
// Any step may end the run in FAILED. Transitions are checked against a fixed
// table. The alias never points at a missing or partially loaded index:
// a load failure or a failed alias add leaves it where it was.
//
// Each phase runs under Config.PhaseTimeout. The outcome is a Summary with
// record counts, rejected documents, warnings and per-phase timings. Runs of
// the same entity must not overlap; WithLock wraps a Job with a pkg/lock
// Locker to guarantee that.
package reindex
