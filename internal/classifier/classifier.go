package classifier

import (
	"regexp"
	"strings"
	"sync"

	"github.com/cloo-solutions/litbot/internal/domain"
)

// DefaultCategory is used when no category keyword matches.
const DefaultCategory = "General Tech Law"

// MaxHashtags bounds the hashtag list attached to a published item.
const MaxHashtags = 5

// Category is one entry of the ordered category map.
type Category struct {
	Name     string
	Keywords []string
}

// Categories is evaluated in declaration order; the first category with any
// whole-word hit wins.
var Categories = []Category{
	{Name: "AI & Law", Keywords: []string{"AI", "Artificial Intelligence", "Machine Learning", "Generative AI", "LLM", "Deepfakes"}},
	{Name: "Quantum Computing", Keywords: []string{"Quantum Computing", "Quantum"}},
	{Name: "Cryptography", Keywords: []string{"Cryptography", "Encryption", "Blockchain Law", "Blockchain"}},
	{Name: "Sustainability & Energy", Keywords: []string{"Renewable Energy", "Green Tech", "Sustainability", "Climate Law"}},
	{Name: "Intellectual Property", Keywords: []string{"Copyright", "IP", "Intellectual Property", "Patent", "Trademark"}},
	{Name: "Data Privacy", Keywords: []string{"Data Privacy", "GDPR", "Privacy", "PDPA", "Cybersecurity"}},
	{Name: "Regulation & Policy", Keywords: []string{"Regulation", "Tech Policy", "Antitrust"}},
}

// Result is the derived category and hashtags for one item.
type Result struct {
	Category string
	Hashtags []string
}

// Classifier decides relevance and derives categories. It is safe for
// concurrent use; compiled patterns are cached per keyword.
type Classifier struct {
	categories []Category

	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

// New returns a classifier over the default category map.
func New() *Classifier {
	return NewWithCategories(Categories)
}

func NewWithCategories(categories []Category) *Classifier {
	return &Classifier{
		categories: categories,
		patterns:   make(map[string]*regexp.Regexp),
	}
}

// IsRelevant reports whether any keyword occurs as a whole word in the item
// title or summary.
func (c *Classifier) IsRelevant(item *domain.Item, keywords []string) bool {
	text := itemText(item)
	for _, kw := range keywords {
		if c.matches(kw, text) {
			return true
		}
	}
	return false
}

// Classify derives the category and hashtags for item.
func (c *Classifier) Classify(item *domain.Item, keywords []string) Result {
	return c.ClassifyText(itemText(item), keywords)
}

// ClassifyText classifies arbitrary text. Backfill uses it on link text.
func (c *Classifier) ClassifyText(text string, keywords []string) Result {
	category := DefaultCategory
	for _, cat := range c.categories {
		if c.anyMatch(cat.Keywords, text) {
			category = cat.Name
			break
		}
	}

	tags := make([]string, 0, MaxHashtags)
	seen := make(map[string]struct{})
	add := func(tag string) {
		if tag == "#" {
			return
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}

	for _, kw := range keywords {
		if c.matches(kw, text) {
			add("#" + strings.ReplaceAll(strings.TrimSpace(kw), " ", ""))
		}
	}
	add(CategoryTag(category))

	if len(tags) > MaxHashtags {
		tags = tags[:MaxHashtags]
	}
	return Result{Category: category, Hashtags: tags}
}

// CategoryTag renders a category name as a hashtag.
func CategoryTag(category string) string {
	r := strings.NewReplacer(" ", "", "&", "")
	return "#" + r.Replace(category)
}

func (c *Classifier) anyMatch(keywords []string, text string) bool {
	for _, kw := range keywords {
		if c.matches(kw, text) {
			return true
		}
	}
	return false
}

func (c *Classifier) matches(keyword, text string) bool {
	re := c.pattern(keyword)
	if re == nil {
		return false
	}
	return re.MatchString(text)
}

func (c *Classifier) pattern(keyword string) *regexp.Regexp {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}
	key := strings.ToLower(keyword)

	c.mu.RLock()
	re, ok := c.patterns[key]
	c.mu.RUnlock()
	if ok {
		return re
	}

	re = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	c.mu.Lock()
	c.patterns[key] = re
	c.mu.Unlock()
	return re
}

func itemText(item *domain.Item) string {
	if item == nil {
		return ""
	}
	return item.Title + " " + item.Summary
}
