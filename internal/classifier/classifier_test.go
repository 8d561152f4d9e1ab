package classifier

import (
	"sync"
	"testing"

	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_AIRegulationItem(t *testing.T) {
	c := New()
	item := &domain.Item{
		Title:   "New AI Regulation",
		Summary: "The EU passed a law on AI.",
		Link:    "https://x/1",
	}
	keywords := []string{"AI", "Regulation"}

	assert.True(t, c.IsRelevant(item, keywords))

	res := c.Classify(item, keywords)
	assert.Equal(t, "AI & Law", res.Category)
	assert.Equal(t, []string{"#AI", "#Regulation", "#AILaw"}, res.Hashtags)
}

func TestClassifier_WholeWordOnly(t *testing.T) {
	c := New()
	item := &domain.Item{Title: "He said it was fine", Summary: "Nothing maintained here."}

	assert.False(t, c.IsRelevant(item, []string{"AI"}))
	assert.Equal(t, DefaultCategory, c.Classify(item, nil).Category)
}

func TestClassifier_CaseInsensitive(t *testing.T) {
	c := New()
	item := &domain.Item{Title: "gdpr enforcement roundup"}

	assert.True(t, c.IsRelevant(item, []string{"GDPR"}))
	res := c.Classify(item, []string{"GDPR"})
	assert.Equal(t, "Data Privacy", res.Category)
	assert.Equal(t, []string{"#GDPR", "#DataPrivacy"}, res.Hashtags)
}

func TestClassifier_MultiWordKeyword(t *testing.T) {
	c := New()
	item := &domain.Item{Title: "Court weighs Machine Learning patents"}

	res := c.Classify(item, []string{"Machine Learning", "Patent"})
	assert.Equal(t, "AI & Law", res.Category)
	assert.Equal(t, []string{"#MachineLearning", "#AILaw"}, res.Hashtags, "Patent does not match patents")
}

func TestClassifier_FirstCategoryWins(t *testing.T) {
	c := New()
	item := &domain.Item{Title: "Copyright and quantum computing collide"}

	assert.Equal(t, "Quantum Computing", c.Classify(item, nil).Category)
}

func TestClassifier_HashtagsDedupedAndBounded(t *testing.T) {
	c := New()
	item := &domain.Item{
		Title:   "AI privacy GDPR copyright antitrust encryption",
		Summary: "AI again",
	}
	keywords := []string{"AI", "ai", "Privacy", "GDPR", "Copyright", "Antitrust", "Encryption"}

	res := c.Classify(item, keywords)
	require.Len(t, res.Hashtags, MaxHashtags)
	assert.Equal(t, []string{"#AI", "#Privacy", "#GDPR", "#Copyright", "#Antitrust"}, res.Hashtags)
}

func TestClassifier_CategoryTagNotDuplicated(t *testing.T) {
	c := NewWithCategories([]Category{{Name: "Privacy", Keywords: []string{"Privacy"}}})
	item := &domain.Item{Title: "Privacy news"}

	res := c.Classify(item, []string{"Privacy"})
	assert.Equal(t, []string{"#Privacy"}, res.Hashtags)
}

func TestClassifier_Deterministic(t *testing.T) {
	c := New()
	item := &domain.Item{Title: "Blockchain Law update", Summary: "Trademark filings rise"}
	keywords := []string{"Blockchain", "Trademark"}

	first := c.Classify(item, keywords)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Classify(item, keywords))
		assert.True(t, c.IsRelevant(item, keywords))
	}
}

func TestClassifier_ConcurrentUse(t *testing.T) {
	c := New()
	item := &domain.Item{Title: "New AI Regulation"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "AI & Law", c.Classify(item, []string{"AI"}).Category)
		}()
	}
	wg.Wait()
}

func TestClassifier_ClassifyTextOnLink(t *testing.T) {
	c := New()
	res := c.ClassifyText("https://example.com/2024/05/eu gdpr fine", []string{"GDPR"})
	assert.Equal(t, "Data Privacy", res.Category)
	assert.Contains(t, res.Hashtags, "#GDPR")
}

func TestCategoryTag(t *testing.T) {
	assert.Equal(t, "#AILaw", CategoryTag("AI & Law"))
	assert.Equal(t, "#GeneralTechLaw", CategoryTag(DefaultCategory))
}
