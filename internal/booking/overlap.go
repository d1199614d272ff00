package booking

// Overlaps reports whether two half-open time ranges [aStart, aEnd) and
// [bStart, bEnd) on the same room and date intersect. Times are zero-padded
// 24-hour "HH:MM" strings, so lexical comparison orders them correctly.
//
// Adjacent ranges sharing an endpoint do not overlap: a booking ending at
// 10:00 and one starting at 10:00 can both be approved.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}
