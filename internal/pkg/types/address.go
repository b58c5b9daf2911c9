package types

// ShortenAddress abbreviates a wallet address for display purposes,
// keeping the first 6 and last 4 characters (e.g. "0x1234...abcd").
// Addresses too short to abbreviate are returned unchanged.
func ShortenAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
