// Package cascade implements keyset ("cascade") pagination for infinite-scroll feeds.
//
// A page is read with a boundary predicate on the last-seen row's sort value and id
// instead of an offset, so rows inserted or deleted before the cursor never shift the
// following pages:
//
//	desc: (col < v) OR (col = v AND id < cursor_id)
//	asc:  (col > v) OR (col = v AND id > cursor_id)
//
// Every ordering is (sort column, id) in the same direction, which makes it total.
// The engine fetches limit+1 rows to learn whether another page exists; the opaque
// next cursor is derived from the last row it keeps.
//
// Backing collections plug in through Source. Query.SQL renders the predicate,
// ORDER BY and LIMIT for Postgres-style placeholders.
package cascade
