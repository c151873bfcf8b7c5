package nlq

import (
	"strings"

	"github.com/jinzhu/inflection"
)

type Intent string

const (
	IntentGreeting   Intent = "greeting"
	IntentPronoun    Intent = "pronoun_followup"
	IntentCounting   Intent = "counting"
	IntentDuration   Intent = "duration"
	IntentListing    Intent = "listing"
	IntentExistence  Intent = "existence"
	IntentComparison Intent = "comparison"
	IntentDetail     Intent = "detail"
	IntentUnknown    Intent = "unknown"
)

// Rule pairs an intent with its predicate. Rules are evaluated in slice
// order and the first match wins, so a later rule implicitly carries
// "and no earlier rule matched".
type Rule struct {
	Intent Intent
	Match  func(q Question) bool
}

// Question is a normalized question as seen by the rules.
type Question struct {
	Tokens []string
	Text   string
	set    map[string]struct{}
	single map[string]struct{}
}

func NewQuestion(tokens []string) Question {
	single := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		single[inflection.Singular(t)] = struct{}{}
	}
	return Question{Tokens: tokens, Text: strings.Join(tokens, " "), set: toSet(tokens...), single: single}
}

// HasSingular is Has after singularizing the question's tokens, so
// "branches" matches "branch". Words are matched as given too.
func (q Question) HasSingular(words ...string) bool {
	if q.Has(words...) {
		return true
	}
	for _, w := range words {
		if _, ok := q.single[w]; ok {
			return true
		}
	}
	return false
}

func (q Question) Has(words ...string) bool {
	for _, w := range words {
		if _, ok := q.set[w]; ok {
			return true
		}
	}
	return false
}

func (q Question) HasPhrase(phrase string) bool {
	return strings.Contains(" "+q.Text+" ", " "+phrase+" ")
}

// Rules is the intent precedence table. The pronoun follow-up sits between
// greeting and counting but needs the stored conversation, so the engine
// checks it itself.
var Rules = []Rule{
	{IntentGreeting, isGreeting},
	{IntentCounting, isCounting},
	{IntentDuration, hasAny("long", "days", "time", "since")},
	{IntentListing, hasAny("list", "show", "who", "which", "all")},
	{IntentExistence, hasAny("exist", "exists", "there", "any", "some")},
	{IntentComparison, hasAny("compare", "comparison", "versus", "vs", "difference")},
	{IntentDetail, hasAny("what", "where", "who", "which", "is", "are", "does", "has")},
}

// Classify returns the first matching intent, or IntentUnknown.
func Classify(tokens []string) Intent {
	q := NewQuestion(tokens)
	for _, r := range Rules {
		if r.Match(q) {
			return r.Intent
		}
	}
	return IntentUnknown
}

func hasAny(words ...string) func(Question) bool {
	return func(q Question) bool { return q.Has(words...) }
}

var (
	greetingWords = toSet("hi", "hello", "hey")
	greetingFill  = toSet("there")
)

// isGreeting matches questions made only of greeting words.
func isGreeting(q Question) bool {
	greeted := false
	for _, t := range q.Tokens {
		if _, ok := greetingWords[t]; ok {
			greeted = true
			continue
		}
		if _, ok := greetingFill[t]; !ok {
			return false
		}
	}
	return greeted
}

// isCounting matches "how many", "number of", "count" and "total". "how many
// days" is left to the duration rule and "serial number of" asks for a value.
func isCounting(q Question) bool {
	if q.HasPhrase("how many days") {
		return false
	}
	numberOf := q.HasPhrase("number of") && !q.HasPhrase("serial number of")
	return q.HasPhrase("how many") || numberOf || q.Has("count", "total")
}
