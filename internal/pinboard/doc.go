// Package pinboard provides the HTTP client for the pin provider that feeds
// Pinterval its image records.
//
// # Endpoints
//
//	GET /api/me/boards               → {items:[{id,name}]}
//	GET /api/me/pins?limit=N         → {items:[{id,title,link,image}]}
//	GET /api/boards/{id}/pins?limit=N
//	GET /api/search?q=TEXT&limit=N   (limit ≤ 120)
//	GET /api/image-proxy?url=ORIGINAL (raw image bytes, same origin)
//
// List limits are clamped to MaxLimit. Records without an image are dropped.
//
// # Authentication
//
// A 401 or 403 response, or an error body whose message describes an
// authentication failure, yields ErrNotLoggedIn. Callers treat that as
// "not logged in" and show LoginURL instead of crashing with empty data.
//
// # Ordering
//
// Order.Apply arranges a fetched list before playback: newest keeps the
// provider order, oldest reverses it, random applies a Fisher-Yates shuffle.
package pinboard
