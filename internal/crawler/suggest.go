package crawler

import (
	"strings"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
)

// SuggestEmail picks the primary contact for a domain. In priority order:
// info@<domain>, any address at <domain>, any info@ address, then the first
// address. Comparisons ignore case and a leading "www." on the domain. It
// reports false when emails is empty.
func SuggestEmail(emails []string, domainName string) (string, bool) {
	if len(emails) == 0 {
		return "", false
	}

	host := domain.StripWWW(strings.ToLower(strings.TrimSpace(domainName)))
	exact := "info@" + host

	var atDomain, infoAny string
	for _, email := range emails {
		lower := strings.ToLower(strings.TrimSpace(email))
		if lower == exact {
			return email, true
		}

		local, emailHost, ok := splitAddress(lower)
		if !ok {
			continue
		}
		if atDomain == "" && emailHost == host {
			atDomain = email
		}
		if infoAny == "" && local == "info" {
			infoAny = email
		}
	}

	switch {
	case atDomain != "":
		return atDomain, true
	case infoAny != "":
		return infoAny, true
	default:
		return emails[0], true
	}
}

func splitAddress(email string) (local, host string, ok bool) {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return "", "", false
	}
	return email[:at], email[at+1:], true
}
