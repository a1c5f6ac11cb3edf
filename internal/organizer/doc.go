// Package organizer finalizes analyses by copying script outputs into the
// per-symbol target directory.
//
// It locates the screener PDF and the weekly data CSV in the item work
// directory, allocates collision-safe timestamped destination names, and
// copies with checksum verification so the originals survive a failed copy.
// Progress updates and error wrapping follow the same conventions as other
// stages so the workflow manager can react uniformly.
package organizer
