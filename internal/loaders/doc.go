// Package loaders provides implementations of the Loader interface
// for the document formats found in a workspace. Each loader knows how to
// extract text segments from one family of file extensions.
//
// Loaders are registered with the Registry at startup.
package loaders
