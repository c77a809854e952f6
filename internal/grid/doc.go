// Package grid resolves which image each viewer slot shows.
//
// Every Render starts a new generation. Slots map to
// items[(index+i) mod len(items)]; an empty list, a negative index, or an
// invisible frame (the gap phase) clears every slot. In grayscale mode a slot
// shows a cached handle when one exists, otherwise it is pending and a
// Request tagged with the generation is queued for the caller to execute.
//
// Results come back through Complete. A result whose generation is no longer
// current is dropped and its handle released; a failed transform falls back
// to the original image. The slot set is only rebuilt when the grid size
// changes.
package grid
