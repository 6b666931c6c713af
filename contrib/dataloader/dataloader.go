// Package dataloader provides the batching helpers used by generated join
// loaders.
//
// A join loader collects the keys of a batch of owners, loads every related
// row with a single IN query and hands each owner its rows:
//
//	keys := dataloader.Keys(authors, func(a Author) int64 { return a.ID })
//	books, err := sql.SelectAll[Book](ctx, db, BookMeta, "author_id", keys)
//	if err != nil {
//	    return err
//	}
//	grouped := dataloader.GroupByKey(books, func(b Book) int64 { return b.AuthorID })
//	for i := range authors {
//	    authors[i].Books = grouped[authors[i].ID]
//	}
//
// Belongs-to joins look rows up by primary key with IndexByKey instead.
package dataloader

// KeyFunc extracts a key from an entity.
type KeyFunc[K comparable, V any] func(V) K

// Keys returns the distinct keys of values in first-seen order, boxed for
// use as IN query arguments.
func Keys[K comparable, V any](values []V, keyFn KeyFunc[K, V]) []any {
	seen := make(map[K]struct{}, len(values))
	keys := make([]any, 0, len(values))
	for _, v := range values {
		k := keyFn(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// GroupByKey groups entities by a key function.
// Useful for one-to-many relationships where multiple entities share the same foreign key.
// Each group keeps the order of values.
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// IndexByKey maps each entity to its key. When keys repeat, the first
// entity wins.
func IndexByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K]V {
	result := make(map[K]V, len(values))
	for _, v := range values {
		key := keyFn(v)
		if _, ok := result[key]; !ok {
			result[key] = v
		}
	}
	return result
}
