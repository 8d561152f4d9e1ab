package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceType selects the fetcher used for a feed source.
type SourceType string

const (
	SourceTypeRSS  SourceType = "rss"
	SourceTypePDPC SourceType = "pdpc"
)

// FeedSource is one configured content source.
type FeedSource struct {
	Name string     `yaml:"name"`
	URL  string     `yaml:"url"`
	Type SourceType `yaml:"type"`
}

// FeedsFile is the on-disk layout of LITBOT_FEEDS_FILE.
type FeedsFile struct {
	Sources  []FeedSource `yaml:"sources"`
	Keywords []string     `yaml:"default_keywords"`
}

// DefaultKeywords seed an empty keyword table.
var DefaultKeywords = []string{
	"AI", "Artificial Intelligence",
	"Copyright", "IP", "Intellectual Property",
	"Regulation", "Data Privacy", "GDPR",
	"Machine Learning", "Deepfakes",
	"Generative AI", "LLM",
	"Tech Policy", "Antitrust", "Cybersecurity",
	"Emerging Tech", "Quantum Computing", "Blockchain Law",
	"Cryptography", "Encryption",
	"Renewable Energy", "Green Tech", "Sustainability", "Climate Law",
}

// DefaultSources is used when no feeds file is configured.
var DefaultSources = []FeedSource{
	{Name: "EFF", URL: "https://www.eff.org/rss/updates.xml", Type: SourceTypeRSS},
	{Name: "The Verge Policy", URL: "https://www.theverge.com/rss/policy/index.xml", Type: SourceTypeRSS},
	{Name: "Artificial Lawyer", URL: "https://artificiallawyer.com/feed/", Type: SourceTypeRSS},
	{Name: "ABA Journal Tech", URL: "https://www.abajournal.com/rss/feeds/topics_Technology", Type: SourceTypeRSS},
	{Name: "Eric Goldman", URL: "https://blog.ericgoldman.org/feed", Type: SourceTypeRSS},
	{Name: "MIT Technology Review", URL: "https://www.technologyreview.com/feed/", Type: SourceTypeRSS},
	{Name: "BTLJ", URL: "https://btlj.org/feed/", Type: SourceTypeRSS},
	{Name: "Business Times Tech", URL: "https://www.businesstimes.com.sg/rss/technology", Type: SourceTypeRSS},
	{Name: "The Tech Revolutionist", URL: "https://thetechrevolutionist.com/category/tech-explained/feed", Type: SourceTypeRSS},
	{Name: "TechGoondu", URL: "https://www.techgoondu.com/feed/", Type: SourceTypeRSS},
	{Name: "Tech for Good Institute", URL: "https://techforgoodinstitute.org/feed/", Type: SourceTypeRSS},
	{Name: "SSRN Cyberspace Law", URL: "https://papers.ssrn.com/sol3/JELJOUR_RSS.cfm?journal_id=225", Type: SourceTypeRSS},
	{Name: "Singapore Statutes Online", URL: "https://sso.agc.gov.sg/rss/new-legislation", Type: SourceTypeRSS},
}

// PDPCSource is appended when LITBOT_PDPC_ENABLED is set.
var PDPCSource = FeedSource{
	Name: "PDPC Singapore",
	URL:  "https://www.pdpc.gov.sg/api/pdpcpressroom/getpressroomlisting",
	Type: SourceTypePDPC,
}

// LoadFeeds reads the feeds file at path. An empty path yields the defaults.
func LoadFeeds(path string) (*FeedsFile, error) {
	if path == "" {
		return &FeedsFile{Sources: DefaultSources, Keywords: DefaultKeywords}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}

	var ff FeedsFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file: %w", err)
	}

	for i := range ff.Sources {
		src := &ff.Sources[i]
		if strings.TrimSpace(src.URL) == "" {
			return nil, fmt.Errorf("feeds file: source %d has no url", i)
		}
		if src.Type == "" {
			src.Type = SourceTypeRSS
		}
		if src.Type != SourceTypeRSS && src.Type != SourceTypePDPC {
			return nil, fmt.Errorf("feeds file: source %q has unknown type %q", src.Name, src.Type)
		}
		if src.Name == "" {
			src.Name = src.URL
		}
	}

	if len(ff.Sources) == 0 {
		ff.Sources = DefaultSources
	}
	if len(ff.Keywords) == 0 {
		ff.Keywords = DefaultKeywords
	}

	return &ff, nil
}

// Sources returns the configured sources, adding PDPC when enabled and not already listed.
func (c *Config) Sources(ff *FeedsFile) []FeedSource {
	sources := append([]FeedSource(nil), ff.Sources...)
	if !c.PDPCEnabled {
		return sources
	}
	for _, s := range sources {
		if s.Type == SourceTypePDPC {
			return sources
		}
	}
	return append(sources, PDPCSource)
}
