package lexicon

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

// GeneralCategory is assigned to skills that are not part of any lexicon category.
const GeneralCategory = "general"

// Category is a named group of skill keywords.
type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Lexicon is an ordered, read-only set of skill categories.
// Declaration order matters: a keyword listed in several categories belongs to the first one.
type Lexicon struct {
	categories []Category
	terms      []Term
}

// Term is a single compiled keyword.
type Term struct {
	Keyword  string
	Category string

	pattern *regexp.Regexp
}

// Matches reports whether the keyword occurs in text as a whole word, ignoring case.
func (t Term) Matches(text string) bool {
	return t.pattern.MatchString(text)
}

// New builds a lexicon from the provided categories. Keywords are lower-cased and trimmed,
// duplicates keep their first category.
func New(categories []Category) (*Lexicon, error) {
	if len(categories) == 0 {
		return nil, errors.New("lexicon must contain at least one category")
	}

	l := &Lexicon{}
	seen := make(map[string]struct{})

	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, errors.New("lexicon category name is required")
		}

		category := Category{Name: name}
		for _, kw := range c.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}

			category.Keywords = append(category.Keywords, kw)

			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}

			pattern, err := wholeWord(kw)
			if err != nil {
				return nil, fmt.Errorf("compiling keyword %q: %w", kw, err)
			}

			l.terms = append(l.terms, Term{Keyword: kw, Category: name, pattern: pattern})
		}

		l.categories = append(l.categories, category)
	}

	return l, nil
}

// Load reads a lexicon from a YAML file with a list of categories.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lexicon file %q: %w", path, err)
	}

	var categories []Category
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("parsing lexicon file %q: %w", path, err)
	}

	return New(categories)
}

// Default returns the built-in lexicon.
func Default() *Lexicon {
	l, err := New(defaultCategories)
	if err != nil {
		panic(err)
	}
	return l
}

// Terms returns compiled keywords in declaration order.
func (l *Lexicon) Terms() []Term {
	out := make([]Term, len(l.terms))
	copy(out, l.terms)
	return out
}

// Categories returns a copy of the categories in declaration order.
func (l *Lexicon) Categories() []Category {
	out := make([]Category, 0, len(l.categories))
	for _, c := range l.categories {
		out = append(out, Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)})
	}
	return out
}

// CategoryOf returns the first category containing the keyword, or GeneralCategory.
func (l *Lexicon) CategoryOf(keyword string) string {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	for _, t := range l.terms {
		if t.Keyword == keyword {
			return t.Category
		}
	}
	return GeneralCategory
}

// Len returns the number of distinct keywords.
func (l *Lexicon) Len() int {
	return len(l.terms)
}

// wholeWord matches the keyword when it is not glued to other word characters.
// \b does not work for keywords ending in symbols such as "c++" or "c#".
func wholeWord(keyword string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(keyword) + `(?:$|[^\p{L}\p{N}_])`)
}
