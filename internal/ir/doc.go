// Package ir provides the tagged value representation used for container
// snapshots.
//
// Snapshots cross the process boundary as JSON text. Rather than decoding
// straight into typed state records, callers decode into IRValue first and
// inspect each field's kind; this is what lets validators report every
// malformed field at once.
//
// Key design constraints:
//   - IRValue is sealed; type switches over it are exhaustive
//   - Canonical output sorts keys by UTF-16 code units and NFC-normalizes strings
//   - NaN and infinities are not representable
//
// ir imports nothing internal.
package ir
