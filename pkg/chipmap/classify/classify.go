// Package classify places canonical product names in the (epoch, series,
// level) taxonomy. Rules are tried in order and the first match wins, so the
// table order is part of the policy.
package classify

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/cognicore/chipmap/internal/logging"
	"github.com/cognicore/chipmap/pkg/chipmap/internalerr"
)

// Triple is the taxonomic position of a product name.
type Triple struct {
	Epoch  int `json:"epoch" yaml:"epoch"`
	Series int `json:"series" yaml:"series"`
	Level  int `json:"level" yaml:"level"`
}

// X is the horizontal plot coordinate of the triple: epoch*10 + series.
func (t Triple) X() int {
	return t.Epoch*10 + t.Series
}

func (t Triple) String() string {
	return fmt.Sprintf("(%d, %d, %d)", t.Epoch, t.Series, t.Level)
}

// Rule pairs a pattern with the epoch it assigns. The pattern's first
// capture group is the series, the second the level.
type Rule struct {
	Name    string
	Epoch   int
	Pattern *regexp.Regexp
}

// DefaultRules returns the GeForce rule table. Order matters: a name such as
// "GeForce GTX 1080" matches both of the first two rules and takes the first.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "tier-thousands", Epoch: 3, Pattern: regexp.MustCompile(`GeForce [A-Z]+ (\d)0(\d0)`)},
		{Name: "tier-hundreds", Epoch: 2, Pattern: regexp.MustCompile(`GeForce [A-Z]+ (\d)(\d\d)`)},
		{Name: "number-tier", Epoch: 1, Pattern: regexp.MustCompile(`GeForce (\d)(\d0)0 [A-Z]+`)},
	}
}

// UnclassifiableError is returned for names no rule matches.
type UnclassifiableError struct {
	Name string
}

func (e *UnclassifiableError) Error() string {
	return fmt.Sprintf("%v: %q", internalerr.ErrUnclassifiable, e.Name)
}

func (e *UnclassifiableError) Unwrap() error {
	return internalerr.ErrUnclassifiable
}

// Classifier assigns triples using an ordered rule table. The table is fixed
// at construction, so a Classifier is safe for concurrent use.
type Classifier struct {
	rules []Rule
	log   logging.Logger
}

// New validates rules and creates a classifier. Misses are reported to log.
func New(rules []Rule, log logging.Logger) (*Classifier, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("classify: empty rule table: %w", internalerr.ErrInvalidConfig)
	}
	for i, r := range rules {
		if err := ValidateRule(r); err != nil {
			return nil, fmt.Errorf("classify: rule %d: %w", i, err)
		}
	}
	return &Classifier{
		rules: append([]Rule(nil), rules...),
		log:   logging.OrNop(log),
	}, nil
}

// Default creates a classifier over DefaultRules.
func Default(log logging.Logger) *Classifier {
	c, err := New(DefaultRules(), log)
	if err != nil {
		panic(err)
	}
	return c
}

// ValidateRule checks that r can extract a triple.
func ValidateRule(r Rule) error {
	if r.Pattern == nil {
		return fmt.Errorf("rule %q has no pattern: %w", r.Name, internalerr.ErrInvalidConfig)
	}
	if n := r.Pattern.NumSubexp(); n != 2 {
		return fmt.Errorf("rule %q has %d capture groups, want 2: %w", r.Name, n, internalerr.ErrInvalidConfig)
	}
	if r.Epoch <= 0 {
		return fmt.Errorf("rule %q has epoch %d, want > 0: %w", r.Name, r.Epoch, internalerr.ErrInvalidConfig)
	}
	return nil
}

// Rules returns a copy of the rule table in priority order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify returns the triple of the first rule matching name.
func (c *Classifier) Classify(name string) (Triple, error) {
	t, _, err := c.Match(name)
	return t, err
}

// Match is Classify that also returns the rule that matched.
func (c *Classifier) Match(name string) (Triple, Rule, error) {
	for _, r := range c.rules {
		m := r.Pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		series, ok1 := parseGroup(m[1])
		level, ok2 := parseGroup(m[2])
		if !ok1 || !ok2 {
			c.log.Debug("rule groups are not numbers",
				logging.String("rule", r.Name), logging.String("name", name))
			continue
		}
		return Triple{Epoch: r.Epoch, Series: series, Level: level}, r, nil
	}

	c.log.Warn("unclassifiable name", logging.String("name", name))
	return Triple{}, Rule{}, &UnclassifiableError{Name: name}
}

func parseGroup(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
