package domain

// State is the lifecycle position of a coordinate. It is never stored: it is
// computed on demand from filesystem presence, so it cannot drift from the
// store.
type State string

const (
	StateAbsent       State = "absent"
	StateRegistered   State = "registered"
	StateMaterialized State = "materialized"
	StateIndexed      State = "indexed"
)

// MaterializeOutcome reports which path an indexing request took.
type MaterializeOutcome string

const (
	OutcomeAlreadyIndexed          MaterializeOutcome = "already-indexed"
	OutcomeIndexedFromExistingTree MaterializeOutcome = "indexed-from-existing-tree"
	OutcomeIndexedFromSource       MaterializeOutcome = "indexed-from-source"
)
