package syncer

import "github.com/shelterlink/welfare-homes-api/models"

type keyed interface {
	Key() models.EntityKey
}

// Merge concatenates the document-store records and the flat-file records
// and keeps the first occurrence of each natural key, so the document copy
// wins whenever both stores hold the same record.
func Merge[T keyed](doc, flat []T) []T {
	out := make([]T, 0, len(doc)+len(flat))
	seen := make(map[models.EntityKey]struct{}, len(doc)+len(flat))
	for _, records := range [][]T{doc, flat} {
		for _, rec := range records {
			key := rec.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, rec)
		}
	}
	return out
}
