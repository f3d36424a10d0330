package scanner

import (
	"math"
	"strconv"
	"strings"
)

// FlagThreshold is the SEO score below which a domain is flagged.
const FlagThreshold = 70

const reportRule = "=================================================="

// CalculateScore returns round(100 * passed / total), or 100 when nothing
// was checked.
func CalculateScore(total, passed int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(100 * float64(passed) / float64(total)))
}

// tally accumulates checks and keeps issues grouped by key in first-issue order.
type tally struct {
	total  int
	passed int
	keys   []string
	issues map[string][]string
}

func newTally() *tally {
	return &tally{issues: make(map[string][]string)}
}

func (t *tally) pass() {
	t.total++
	t.passed++
}

func (t *tally) fail(key, issue string) {
	t.total++
	t.issue(key, issue)
}

// issue records an issue without counting a check.
func (t *tally) issue(key, issue string) {
	if _, ok := t.issues[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.issues[key] = append(t.issues[key], issue)
}

func (t *tally) score() int {
	return CalculateScore(t.total, t.passed)
}

func (t *tally) render(domainName string) string {
	var b strings.Builder
	b.WriteString("SEO Report for: " + domainName + "\n")
	b.WriteString(reportRule + "\n")
	b.WriteString("Total Score: ")
	b.WriteString(strconv.Itoa(t.score()))
	b.WriteString("/100\n\n")

	if len(t.keys) == 0 {
		b.WriteString("No issues found. The SEO is perfect!\n")
		return b.String()
	}

	b.WriteString("Issues to fix:\n")
	for _, key := range t.keys {
		b.WriteString("URL: " + key + "\n")
		for _, issue := range t.issues[key] {
			b.WriteString(" - " + issue + "\n")
		}
	}
	return b.String()
}
