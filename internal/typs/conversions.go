package typs

import "strings"

// UintToSlv encodes a non-negative integer as width bits, most significant
// first. The value must fit.
func UintToSlv(v, width int) string {
	bits := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		if v&1 == 1 {
			bits[i] = '1'
		} else {
			bits[i] = '0'
		}
		v >>= 1
	}
	return string(bits)
}

// SlvToUint decodes a bit string as an unsigned integer. ok is false when
// the string contains an undefined bit.
func SlvToUint(slv string) (v int, ok bool) {
	for i := 0; i < len(slv); i++ {
		switch slv[i] {
		case '0':
			v <<= 1
		case '1':
			v = v<<1 | 1
		default:
			return 0, false
		}
	}
	return v, true
}

// SintToUint maps a two's-complement value into the unsigned range of the
// same width.
func SintToUint(v, width int) int {
	if v < 0 {
		return v + (1 << width)
	}
	return v
}

// UintToSint undoes SintToUint.
func UintToSint(v, width int) int {
	if width < 1 {
		return v
	}
	if v >= 1<<(width-1) {
		return v - (1 << width)
	}
	return v
}

func undefinedSlv(width int) string {
	return strings.Repeat("U", width)
}
