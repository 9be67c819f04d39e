package models

// EntityKind names a persisted collection shared by the document store and
// the flat-file mirror.
type EntityKind string

// Collection kinds and their natural keys: homes (name), reports (numeric id),
// admins (username), socialWorkers (workerId).
const (
	KindHome         EntityKind = "homes"
	KindReport       EntityKind = "reports"
	KindAdmin        EntityKind = "admins"
	KindSocialWorker EntityKind = "socialWorkers"
)

// EntityKey is the natural identity of a record across both stores.
type EntityKey struct {
	Kind  EntityKind
	Value string
}

// Equal reports whether two keys identify the same logical record.
func (k EntityKey) Equal(other EntityKey) bool {
	return k.Kind == other.Kind && k.Value == other.Value
}
