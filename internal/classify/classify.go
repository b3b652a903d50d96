package classify

import "strings"

// Category is the coarse bucket a domain falls into.
type Category string

const (
	Work     Category = "Work"
	Learning Category = "Learning"
	Other    Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{Work, Learning, Other}

var defaultWork = []string{
	"github.com",
	"gitlab.com",
	"bitbucket.org",
	"jira.com",
	"confluence.com",
	"docs.google.com",
	"drive.google.com",
	"office.com",
	"slack.com",
	"teams.microsoft.com",
}

var defaultLearning = []string{
	"stackoverflow.com",
	"developer.mozilla.org",
	"w3schools.com",
	"udemy.com",
	"coursera.org",
	"edx.org",
	"medium.com",
	"dev.to",
	"freecodecamp.org",
}

// Classifier maps domains to categories by substring match against two
// allow-lists. Work is checked before Learning.
type Classifier struct {
	Work     []string
	Learning []string
}

// Default is the classifier with the built-in lists.
var Default = New(nil, nil)

// New returns a classifier with the built-in lists extended by extraWork and
// extraLearning. Blank entries are ignored.
func New(extraWork, extraLearning []string) Classifier {
	return Classifier{
		Work:     merge(defaultWork, extraWork),
		Learning: merge(defaultLearning, extraLearning),
	}
}

func merge(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	for _, d := range extra {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// Classify returns the category of domain using the built-in lists.
func Classify(domain string) Category {
	return Default.Classify(domain)
}

func (c Classifier) Classify(domain string) Category {
	if c.IsWork(domain) {
		return Work
	}
	if c.IsLearning(domain) {
		return Learning
	}
	return Other
}

func (c Classifier) IsWork(domain string) bool {
	return containsAny(domain, c.Work)
}

func (c Classifier) IsLearning(domain string) bool {
	return containsAny(domain, c.Learning)
}

// IsProductive reports whether domain counts towards the productive-time goal.
func (c Classifier) IsProductive(domain string) bool {
	return c.IsWork(domain) || c.IsLearning(domain)
}

func containsAny(domain string, list []string) bool {
	for _, d := range list {
		if strings.Contains(domain, d) {
			return true
		}
	}
	return false
}
