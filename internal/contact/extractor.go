// Package contact pulls e-mail addresses and phone numbers out of fetched
// pages.
package contact

import (
	"regexp"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(
		`(?:\+\d{1,3}[-.\s]?)?(?:\(\d{1,4}\)|\d{1,4})?\d{3,4}[-.\s]?\d{2,4}[-.\s]?\d{2,4}`,
	)
)

// Contacts holds deduplicated matches in first-seen order.
type Contacts struct {
	Emails []string
	Phones []string
}

// Extract scans every page in order. Matches are deduplicated by exact
// string; "Info@x.com" and "info@x.com" are distinct.
func Extract(pages []domain.Page) Contacts {
	emails := newOrderedSet()
	phones := newOrderedSet()

	for _, p := range pages {
		emails.addAll(emailPattern.FindAllString(p.HTML, -1))
		phones.addAll(phonePattern.FindAllString(p.HTML, -1))
	}

	return Contacts{Emails: emails.items, Phones: phones.items}
}

// orderedSet remembers insertion order on top of a set.
type orderedSet struct {
	seen  mapset.Set[string]
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: mapset.NewThreadUnsafeSet[string](), items: []string{}}
}

func (s *orderedSet) addAll(values []string) {
	for _, v := range values {
		if s.seen.Add(v) {
			s.items = append(s.items, v)
		}
	}
}
