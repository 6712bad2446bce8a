// Package security provides utilities for handling sensitive data.
package security

import "crypto/subtle"

// Wipe zeroes and nils out a byte slice holding sensitive data.
// Intended to be called via defer.
func Wipe(data *[]byte) {
	if data == nil || *data == nil {
		return
	}
	for i := range *data {
		(*data)[i] = 0
	}
	if len(*data) > 0 {
		// Constant-time copy keeps the compiler from eliding the zeroing.
		subtle.ConstantTimeCopy(1, *data, make([]byte, len(*data)))
	}
	*data = nil
}

// WipeString attempts to clear a string's backing data.
// Best-effort: Go strings are immutable and may be interned or shared,
// so prefer byte slices for sensitive material.
func WipeString(s *string) {
	if s == nil {
		return
	}
	b := []byte(*s)
	for i := range b {
		b[i] = 0
	}
	*s = ""
}
