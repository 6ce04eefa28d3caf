package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/david/studio-desk/internal/models"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2 January 2006",
	"02 January 2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Monday, 2 January 2006",
	"Monday 2 January 2006",
	"Monday, January 2, 2006",
	// Funders write day first; month first only wins when the day is over 12.
	"02/01/2006",
	"2/1/2006",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"2006/01/02",
}

var (
	ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	isoInText     = regexp.MustCompile(`\b(20\d{2})-(\d{2})-(\d{2})\b`)
	slashInText   = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(20\d{2})\b`)
	monthFirst    = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.?\s+(\d{1,2}),?\s+(20\d{2})\b`)
	dayFirst      = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.?,?\s+(20\d{2})\b`)
)

// ParseDeadline reads a calendar date from loosely formatted text such as
// "Deadline: 30th June 2025", "2025-06-30" or "30/06/2025". Slash dates are
// read day first.
func ParseDeadline(text string) (models.Date, error) {
	cleaned := cleanDateString(text)
	if cleaned == "" {
		return models.Date{}, fmt.Errorf("empty date")
	}
	cleaned = ordinalSuffix.ReplaceAllString(cleaned, "$1")
	cleaned = strings.ReplaceAll(cleaned, "Sept ", "Sep ")

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return models.DateOf(t), nil
		}
	}

	if t := parseDateWithRegex(cleaned); !t.IsZero() {
		return models.DateOf(t), nil
	}

	return models.Date{}, fmt.Errorf("unable to parse date: %s", text)
}

// parseDateWithRegex finds the first recognizable date embedded in text.
func parseDateWithRegex(text string) time.Time {
	if m := isoInText.FindString(text); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t
		}
	}

	if m := slashInText.FindStringSubmatch(text); len(m) == 4 {
		uk := fmt.Sprintf("%s/%s/%s", m[2], m[1], m[3])
		if t, err := time.Parse("1/2/2006", uk); err == nil {
			return t
		}
		us := fmt.Sprintf("%s/%s/%s", m[1], m[2], m[3])
		if t, err := time.Parse("1/2/2006", us); err == nil {
			return t
		}
	}

	if m := monthFirst.FindStringSubmatch(text); len(m) == 4 {
		if t, ok := parseMonthName(m[1], m[2], m[3]); ok {
			return t
		}
	}
	if m := dayFirst.FindStringSubmatch(text); len(m) == 4 {
		if t, ok := parseMonthName(m[2], m[1], m[3]); ok {
			return t
		}
	}

	return time.Time{}
}

func parseMonthName(month, day, year string) (time.Time, bool) {
	month = strings.TrimSuffix(month, ".")
	if strings.EqualFold(month, "sept") {
		month = "Sep"
	}
	s := fmt.Sprintf("%s %s %s", day, month, year)
	for _, layout := range []string{"2 January 2006", "2 Jan 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// cleanDateString removes common label prefixes and normalizes case of
// month names so the layouts above can match.
func cleanDateString(s string) string {
	s = normalizeSpace(s)
	prefixes := []string{
		"closing date:", "deadline:", "closes:", "due date:",
		"submission deadline:", "apply by", "expires:", "ends:",
	}
	lower := strings.ToLower(s)
	for _, p := range prefixes {
		if idx := strings.Index(lower, p); idx != -1 {
			s = s[idx+len(p):]
			lower = lower[idx+len(p):]
		}
	}
	return titleMonths(strings.TrimSpace(s))
}

var monthWord = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)

func titleMonths(s string) string {
	return monthWord.ReplaceAllStringFunc(s, func(w string) string {
		return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	})
}
