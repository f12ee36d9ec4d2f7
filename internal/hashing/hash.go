// Package hashing holds the fixed-width 32-bit hash primitives every
// generation decision is seeded from. All arithmetic wraps modulo 2^32.
package hashing

// HashUint mixes a 32-bit value into a well-distributed 32-bit output.
func HashUint(a uint32) uint32 {
	a = (a ^ 61) ^ (a >> 16)
	a += a << 3
	a ^= a >> 4
	a *= 0x27D4EB2D
	a ^= a >> 15
	return a
}

// HashString folds every code point of s into HashUint, starting from 7.
func HashString(s string) uint32 {
	acc := uint32(7)
	for _, r := range s {
		acc = HashUint(acc + uint32(r))
	}
	return acc
}

// AddSalt hashes a with a fixed salt added.
func AddSalt(a, salt uint32) uint32 {
	return HashUint(a + salt)
}

// HashTile hashes grid cell (i, j) of a width x height grid. offset is the
// parent container's key hash reinterpreted as int32.
func HashTile(i, j, width, height int, offset int32) uint32 {
	raw := int64(offset)*int64(width) + int64(height) + int64(i) + int64(j)*int64(width)
	return HashUint(uint32(raw))
}

// AsInt32 reinterprets the bit pattern of v as a two's-complement int32.
func AsInt32(v uint32) int32 {
	return int32(v)
}

// CMod is the truncated remainder (sign follows the dividend).
func CMod(a, b int32) int32 {
	return a % b
}

// Abs returns |v| widened to int64 so MinInt32 stays positive.
func Abs(v int32) int64 {
	w := int64(v)
	if w < 0 {
		return -w
	}
	return w
}
