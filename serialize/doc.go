// Package serialize implements the two serialization policies required by
// spec.md §4.4: ByteCast, a contiguous byte-for-byte encoding for slices of
// fixed-width numeric values, and Forward, the identity policy for
// payloads a transport can move without conversion.
package serialize
