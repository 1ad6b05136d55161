package bidding

// MaskBidderName redacts the middle of a display name for broadcast
// events, e.g. "Rajesh" -> "Ra***sh". Presentation only; the full name
// stays in the ledger.
func MaskBidderName(name string) string {
	runes := []rune(name)
	if len(runes) <= 4 {
		if len(runes) == 0 {
			return "***"
		}
		return string(runes[0]) + "***"
	}
	return string(runes[:2]) + "***" + string(runes[len(runes)-2:])
}
