package model

// Config carries every engine tunable. Resolved once per run from defaults,
// the config file and flags; read-only afterwards.
type Config struct {
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Fuzzy     FuzzyConfig     `yaml:"fuzzy" mapstructure:"fuzzy"`
	Limits    LimitsConfig    `yaml:"limits" mapstructure:"limits"`
	Locale    LocaleConfig    `yaml:"locale" mapstructure:"locale"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	AliasFile string          `yaml:"alias_file,omitempty" mapstructure:"alias_file"` // Optional YAML alias-table override
}

// ExtractConfig tunes the line extractor's anti-noise filters.
type ExtractConfig struct {
	MinLineLength int      `yaml:"min_line_length" mapstructure:"min_line_length"`
	MaxNameLength int      `yaml:"max_name_length" mapstructure:"max_name_length"`
	NoisePrefixes []string `yaml:"noise_prefixes" mapstructure:"noise_prefixes"`
	ReservedKeys  []string `yaml:"reserved_keys" mapstructure:"reserved_keys"`
}

// FuzzyConfig exposes the fuzzy rule-lookup scoring. The safe failure mode
// is a false negative (no match); scores below MinScore never apply a rule.
type FuzzyConfig struct {
	Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
	MinScore       int  `yaml:"min_score" mapstructure:"min_score"`
	TokenWeight    int  `yaml:"token_weight" mapstructure:"token_weight"`
	SubstringBonus int  `yaml:"substring_bonus" mapstructure:"substring_bonus"`
}

// LimitsConfig caps the report surfaces.
type LimitsConfig struct {
	MaxPriorities  int `yaml:"max_priorities" mapstructure:"max_priorities"`
	MaxPerCategory int `yaml:"max_per_category" mapstructure:"max_per_category"`
}

// LocaleConfig parameterizes the shared value/unit/range grammar.
type LocaleConfig struct {
	RangeJoiners []string `yaml:"range_joiners" mapstructure:"range_joiners"`
}

// CacheConfig controls rule-table memoization.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"`
	TTLMinutes int  `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in configuration. The noise prefixes and
// reserved keys mirror the header/footer vocabulary of French lab reports.
func DefaultConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			MinLineLength: 4,
			MaxNameLength: 60,
			NoisePrefixes: []string{
				"page", "date", "edition", "dossier", "adresse", "tel", "fax",
				"laboratoire", "patient", "docteur", "prelev", "reference",
				"valeur", "resultat", "unite", "biochimie", "hematologie",
				"immunologie", "microbiologie", "commentaire", "interpretation",
				"conclusion", "methode", "http", "www",
			},
			ReservedKeys: []string{"page", "date", "nom", "patient"},
		},
		Fuzzy: FuzzyConfig{
			Enabled:        true,
			MinScore:       2,
			TokenWeight:    1,
			SubstringBonus: 1,
		},
		Limits: LimitsConfig{
			MaxPriorities:  8,
			MaxPerCategory: 20,
		},
		Locale: LocaleConfig{
			RangeJoiners: []string{"-", "–", "—", "−", "à", "to"},
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLMinutes: 30,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
