package inst

// Wrap packs a signed value into an unsigned field of the given modulus
// (e.g. 0x10000 for a 16-bit field). Negative values wrap around; nothing
// saturates.
func Wrap(v int64, modulus uint32) uint32 {
	m := int64(modulus)
	return uint32(((v % m) + m) % m)
}

// Bit returns a word with only bit n set.
func Bit(n uint) uint32 {
	return 1 << n
}

// Flag returns Bit(n) when cond holds and zero otherwise.
func Flag(cond bool, n uint) uint32 {
	if cond {
		return Bit(n)
	}
	return 0
}
