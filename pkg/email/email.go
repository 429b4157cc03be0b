package email

import "strings"

// Normalize lower-cases the domain part of an address and leaves the local
// part untouched, since mailbox names may be case sensitive.
func Normalize(address string) string {
	address = strings.TrimSpace(address)
	at := strings.LastIndexByte(address, '@')
	if at < 0 {
		return address
	}
	return address[:at+1] + strings.ToLower(address[at+1:])
}
