// Package state defines the serializable state records of the containers
// and the validators that guard them.
//
// A snapshot is checked twice: first in its raw tagged form (ir.IRObject),
// where kind mismatches such as a string size are visible, and then as a
// typed record, where range rules apply. Both return every problem found
// rather than stopping at the first.
package state
