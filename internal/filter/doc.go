// Package filter narrows the record store to the subset matching a
// set of user-chosen predicates. All predicates are ANDed; applying a
// filter never mutates the store.
package filter
