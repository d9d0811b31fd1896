package logger

import "strings"

// RedactEmail masks an email address for log output, keeping at most the
// first two characters of the local part and the full domain:
// "john.doe@example.com" becomes "jo***@example.com". Local parts of two or
// fewer characters are fully masked, and anything that is not a single
// user@domain pair becomes "***@***".
func RedactEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at < 0 || strings.IndexByte(email[at+1:], '@') >= 0 {
		return "***@***"
	}
	local, domain := email[:at], email[at+1:]
	if len(local) <= 2 {
		return "***@" + domain
	}
	return local[:2] + "***@" + domain
}
