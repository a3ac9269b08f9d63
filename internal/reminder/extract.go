package reminder

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// defaultDueDays is how far out a reminder lands when the spoken date
// cannot be pinned down.
const defaultDueDays = 30

// reminderTemplate binds a command pattern to the submatch slots it
// captures. Vehicle-slotted templates run first so an "on my <vehicle>"
// clause is not folded into the description.
type reminderTemplate struct {
	re      *regexp.Regexp
	desc    int
	vehicle int
	due     int
}

// Reminder command templates, tried in order. The date slot accepts the
// loose phrasings voice transcription produces; ParseDueDate narrows it.
var reminderTemplates = []reminderTemplate{
	{regexp.MustCompile(`(?i)remind me (?:to|about) (.+?) (?:on|for) my (.+?) (?:on|by|before) (.+)`), 1, 2, 3},
	{regexp.MustCompile(`(?i)set (?:a )?reminder (?:for|to) (.+?) (?:on|for) my (.+?) (?:on|by|before) (.+)`), 1, 2, 3},
	{regexp.MustCompile(`(?i)create (?:a )?(?:service )?reminder (?:for|to) (.+?) (?:on|for) my (.+?) due (.+)`), 1, 2, 3},
	{regexp.MustCompile(`(?i)add (?:a )?(.+?) reminder for my (.+?) due (.+)`), 1, 2, 3},
	{regexp.MustCompile(`(?i)schedule (.+?) for my (.+?) (?:on|by|for) (.+)`), 1, 2, 3},
	{regexp.MustCompile(`(?i)remind me (?:to|about) (.+?) (?:on|by|before) (.+)`), 1, 0, 2},
	{regexp.MustCompile(`(?i)set (?:a )?reminder (?:for|to) (.+?) (?:on|by|before) (.+)`), 1, 0, 2},
	{regexp.MustCompile(`(?i)create (?:a )?(?:service )?reminder (?:for|to) (.+?) (?:on|by|before) (.+)`), 1, 0, 2},
	{regexp.MustCompile(`(?i)schedule (.+?) (?:for|on|by) (.+)`), 1, 0, 2},
	{regexp.MustCompile(`(?i)(?:my|the) (.+?) is due (?:on|by)? ?(.+)`), 1, 0, 2},
}

var serviceKeywords = map[ServiceType][]string{
	ServiceOilChange:    {"oil"},
	ServiceTireRotation: {"tire"},
	ServiceBrakeService: {"brake"},
	ServiceInspection:   {"inspection", "inspect", "emissions"},
	ServiceRegistration: {"registration", "register", "tags", "renewal"},
}

var dateLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"January 2",
	"Jan 2",
}

var (
	inDaysPattern   = regexp.MustCompile(`^in (\d+) days?$`)
	inWeeksPattern  = regexp.MustCompile(`^in (\d+) weeks?$`)
	inMonthsPattern = regexp.MustCompile(`^in (\d+) months?$`)
	ordinalPattern  = regexp.MustCompile(`(?i)(\d{1,2})(?:st|nd|rd|th)`)
)

// ExtractCommand parses a reminder command out of free text. It returns
// nil when no template matches, so the router can fall through to the
// messaging extractors.
func ExtractCommand(text string, now time.Time) *Reminder {
	text = strings.TrimSpace(text)
	for _, tpl := range reminderTemplates {
		m := tpl.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		r := &Reminder{
			Description: strings.TrimSpace(m[tpl.desc]),
			DueDate:     ParseDueDate(strings.TrimSpace(m[tpl.due]), now),
			Status:      StatusPending,
		}
		if tpl.vehicle != 0 {
			r.Vehicle = strings.TrimSpace(m[tpl.vehicle])
		}
		r.ServiceType = DetermineServiceType(r.Description)
		return r
	}
	return nil
}

// DetermineServiceType maps a description to a service category by
// keyword. Unmatched descriptions fall into the general bucket.
func DetermineServiceType(description string) ServiceType {
	lower := strings.ToLower(description)
	for service, keywords := range serviceKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return service
			}
		}
	}
	return ServiceGeneral
}

// ParseDueDate parses the spoken-language date forms the templates
// capture. Dates without a year resolve to the next occurrence from now;
// relative forms ("tomorrow", "in 2 weeks", "in 3 months") are anchored
// on now's date, with months counted as 30 days. Anything unparseable
// lands defaultDueDays out, so a matched command stays actionable
// instead of being dropped over a mangled date.
func ParseDueDate(text string, now time.Time) time.Time {
	text = strings.TrimSpace(strings.TrimSuffix(text, "."))
	lower := strings.ToLower(text)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch lower {
	case "today":
		return today
	case "tomorrow":
		return today.AddDate(0, 0, 1)
	case "next week":
		return today.AddDate(0, 0, 7)
	case "next month":
		return today.AddDate(0, 1, 0)
	}

	if m := inDaysPattern.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, n)
	}
	if m := inWeeksPattern.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, n*7)
	}
	if m := inMonthsPattern.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, n*30)
	}

	// "December 15th" parses as "December 15".
	cleaned := ordinalPattern.ReplaceAllString(text, "$1")
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, cleaned)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
			if t.Before(today) {
				t = t.AddDate(1, 0, 0)
			}
		}
		return t
	}
	return today.AddDate(0, 0, defaultDueDays)
}
