package staticlog

import "time"

// appendTimestamp renders ns (nanoseconds since the Unix epoch) as
// "YYYY-MM-DD-HH:MM:SS.NNNNNNNNN" and appends it to buf. Unlike the
// RFC3339Nano helpers this is derived from, the fractional part always
// carries all nine digits, zero-padded and untrimmed: the drain's line
// format is fixed-width, not RFC3339's variable-width fraction.
func appendTimestamp(buf []byte, ns int64) []byte {
	t := time.Unix(0, ns).UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	buf = appendFourDigits(buf, year)
	buf = append(buf, '-')
	buf = appendTwoDigits(buf, int(month))
	buf = append(buf, '-')
	buf = appendTwoDigits(buf, day)
	buf = append(buf, '-')
	buf = appendTwoDigits(buf, hour)
	buf = append(buf, ':')
	buf = appendTwoDigits(buf, min)
	buf = append(buf, ':')
	buf = appendTwoDigits(buf, sec)
	buf = append(buf, '.')
	buf = appendNineDigits(buf, t.Nanosecond())
	return buf
}

func appendNineDigits(buf []byte, nano int) []byte {
	var digits [9]byte
	for i := 8; i >= 0; i-- {
		digits[i] = byte('0' + nano%10)
		nano /= 10
	}
	return append(buf, digits[:]...)
}

func appendFourDigits(buf []byte, v int) []byte {
	buf = appendTwoDigits(buf, v/100)
	buf = appendTwoDigits(buf, v%100)
	return buf
}

func appendTwoDigits(buf []byte, value int) []byte {
	buf = append(buf, byte('0'+value/10))
	buf = append(buf, byte('0'+value%10))
	return buf
}
