// Package grayscale converts remote images into grayscale resource handles.
//
// Conversion fetches the original through an Opener (the provider's image
// proxy), decodes JPEG, PNG, GIF or WebP, downscales so neither side exceeds
// the caller's cap (at most MaxDimension), and replaces each pixel with its
// luminance Y = 0.299R + 0.587G + 0.114B rounded half to even. Alpha is kept.
//
// The result is written as a PNG file and returned as a *Handle. Handles are
// owned: whoever holds one must call Release exactly when it is no longer
// displayable, which removes the file. imagecache takes ownership of handles it
// stores; the grid renderer releases handles that arrive for a stale render.
package grayscale
