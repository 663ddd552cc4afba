// Package document turns raw HTML into a navigable element tree.
//
// Input may arrive incrementally; [Collect] buffers it until the source is
// exhausted and [Normalize] removes layout whitespace before [Parse] builds
// the tree. The tree keeps the shape of the markup as written: tag and
// attribute names are lower-cased and nothing is implied.
package document
