package lcd

// FormatUint renders v right-justified into buf, which it fills completely.
// Digits above 9 use 'A' onwards. Positions left of the most significant
// digit get fill. A value too wide for buf keeps only its low-order digits.
// A base outside 2..36 is treated as 10.
func FormatUint(buf []byte, v uint32, fill byte, base uint8) {
	b := uint32(base)
	if b < 2 || b > 36 {
		b = 10
	}

	i := len(buf)
	for i > 0 {
		i--
		d := byte(v % b)
		if d < 10 {
			buf[i] = '0' + d
		} else {
			buf[i] = 'A' + d - 10
		}
		v /= b
		if v == 0 {
			break
		}
	}
	for i > 0 {
		i--
		buf[i] = fill
	}
}
