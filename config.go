package corpus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldCode identifies which document field a Hit occurred in. The closed
// set and canonical ordering are fixed by spec.md §3.
type FieldCode int

const (
	FieldTitle FieldCode = iota + 1
	FieldAbstract
	FieldCategories
	FieldAuthors
	FieldSubmitter
)

// CanonicalFieldOrder is the order fields are walked when assigning
// positions to a document: the position counter advances across this
// sequence without resetting between fields, so proximity stays meaningful
// across field boundaries (spec.md §3).
var CanonicalFieldOrder = []FieldCode{
	FieldTitle,
	FieldAbstract,
	FieldCategories,
	FieldAuthors,
	FieldSubmitter,
}

func (f FieldCode) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldAbstract:
		return "abstract"
	case FieldCategories:
		return "categories"
	case FieldAuthors:
		return "authors"
	case FieldSubmitter:
		return "submitter"
	default:
		return "unknown"
	}
}

// Config holds every tunable named in spec.md §6. NumBarrels must not
// change after the first build is written to disk: all barrels and the
// query engine have to agree on the partition function.
type Config struct {
	MinWordLength              int               `yaml:"minWordLength"`
	MinTokenLength              int              `yaml:"minTokenLength"`
	NumBarrels                  int              `yaml:"numBarrels"`
	MaxAutocompleteSuggestions  int              `yaml:"maxAutocompleteSuggestions"`
	FieldWeights                map[FieldCode]float64 `yaml:"-"`
	MaxSpan                     int              `yaml:"maxSpan"`
	SimilarityThreshold          float64         `yaml:"similarityThreshold"`
	MaxSynonyms                  int             `yaml:"maxSynonyms"`
	StopWords                    map[string]struct{} `yaml:"-"`

	// Persistence paths (spec.md §6 "Persistent artifacts").
	LexiconPath      string `yaml:"lexiconPath"`
	DocStorePath     string `yaml:"docStorePath"`
	ForwardIndexPath string `yaml:"forwardIndexPath"`
	BarrelDir        string `yaml:"barrelDir"`
	GlovePath        string `yaml:"glovePath"`

	// ShardCacheSize bounds the Cache Manager's LRU shard cache.
	ShardCacheSize int `yaml:"shardCacheSize"`
}

// yamlConfig mirrors Config's serializable fields; FieldWeights and
// StopWords use fixed closed sets and are not meant to be overridden from a
// config file, so they are excluded from the YAML shape.
type yamlConfig struct {
	MinWordLength              int     `yaml:"minWordLength"`
	MinTokenLength              int    `yaml:"minTokenLength"`
	NumBarrels                  int    `yaml:"numBarrels"`
	MaxAutocompleteSuggestions  int    `yaml:"maxAutocompleteSuggestions"`
	MaxSpan                     int    `yaml:"maxSpan"`
	SimilarityThreshold          float64 `yaml:"similarityThreshold"`
	MaxSynonyms                  int    `yaml:"maxSynonyms"`
	LexiconPath      string `yaml:"lexiconPath"`
	DocStorePath     string `yaml:"docStorePath"`
	ForwardIndexPath string `yaml:"forwardIndexPath"`
	BarrelDir        string `yaml:"barrelDir"`
	GlovePath        string `yaml:"glovePath"`
	ShardCacheSize   int    `yaml:"shardCacheSize"`
}

// DefaultConfig returns the fixed defaults from spec.md §6.
func DefaultConfig() Config {
	return Config{
		MinWordLength:              3,
		MinTokenLength:             3,
		NumBarrels:                 64,
		MaxAutocompleteSuggestions: 10,
		FieldWeights: map[FieldCode]float64{
			FieldTitle:      5,
			FieldAbstract:   1,
			FieldCategories: 3,
			FieldAuthors:    1,
			FieldSubmitter:  1,
		},
		MaxSpan:             500,
		SimilarityThreshold: 0.65,
		MaxSynonyms:         3,
		StopWords:           defaultStopWords(),
		LexiconPath:         "lexicon",
		DocStorePath:        "docStore",
		ForwardIndexPath:    "forwardIndex",
		BarrelDir:           "barrels",
		GlovePath:           "glove.50d.txt",
		ShardCacheSize:      16,
	}
}

// LoadConfigFile overlays a YAML file on top of DefaultConfig(). Only the
// fields present in the file are overridden; NumBarrels should only ever be
// set this way before the first build, never changed afterwards.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: reading config %s: %v", ErrConfig, path, err)
	}

	var y yamlConfig
	if err := yaml.Unmarshal(raw, &y); err != nil {
		return cfg, fmt.Errorf("%w: parsing config %s: %v", ErrConfig, path, err)
	}

	if y.MinWordLength != 0 {
		cfg.MinWordLength = y.MinWordLength
	}
	if y.MinTokenLength != 0 {
		cfg.MinTokenLength = y.MinTokenLength
	}
	if y.NumBarrels != 0 {
		cfg.NumBarrels = y.NumBarrels
	}
	if y.MaxAutocompleteSuggestions != 0 {
		cfg.MaxAutocompleteSuggestions = y.MaxAutocompleteSuggestions
	}
	if y.MaxSpan != 0 {
		cfg.MaxSpan = y.MaxSpan
	}
	if y.SimilarityThreshold != 0 {
		cfg.SimilarityThreshold = y.SimilarityThreshold
	}
	if y.MaxSynonyms != 0 {
		cfg.MaxSynonyms = y.MaxSynonyms
	}
	if y.LexiconPath != "" {
		cfg.LexiconPath = y.LexiconPath
	}
	if y.DocStorePath != "" {
		cfg.DocStorePath = y.DocStorePath
	}
	if y.ForwardIndexPath != "" {
		cfg.ForwardIndexPath = y.ForwardIndexPath
	}
	if y.BarrelDir != "" {
		cfg.BarrelDir = y.BarrelDir
	}
	if y.GlovePath != "" {
		cfg.GlovePath = y.GlovePath
	}
	if y.ShardCacheSize != 0 {
		cfg.ShardCacheSize = y.ShardCacheSize
	}

	return cfg, nil
}

func defaultStopWords() map[string]struct{} {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "if",
		"in", "is", "it", "no", "not", "of", "on", "or", "such", "that",
		"the", "their", "then", "there", "these", "they", "this", "to",
		"was", "will", "with", "from", "which", "can", "we", "i", "my",
		"your", "its", "all", "our",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
