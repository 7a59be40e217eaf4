// Package pattern provides the pure GraphDescription builders required by
// spec.md §4.2. Each pattern is parameterized only by integer sizes (and,
// for Random, a seed) and never touches the network.
package pattern
