// Package manager loads policy documents from a directory, keeps them in
// an atomically swapped registry and optionally hot-reloads them on file
// changes. Reloads are all-or-nothing: an invalid file anywhere in the
// directory keeps the previous policy set in place.
package manager
