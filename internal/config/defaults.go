package config

// Generator defaults. 16 characters over all four classes is about 104 bits
// of entropy; five words from the 2048-word list is about 55.
const (
	DefaultPasswordLength  = 16
	DefaultPassphraseWords = 5
	DefaultWordSeparator   = "-"
)

// DefaultMinPassphraseLength is the minimum length enforced when a vault or
// backup passphrase is first chosen.
const DefaultMinPassphraseLength = 8

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: CurrentVersion,
		Home:    "~/.keywarden",
		Generator: GeneratorConfig{
			Length:     DefaultPasswordLength,
			Uppercase:  true,
			Lowercase:  true,
			Numbers:    true,
			Symbols:    true,
			Words:      DefaultPassphraseWords,
			Separator:  DefaultWordSeparator,
			Capitalize: false,
		},
		Backup: BackupConfig{
			Dir:    "", // Resolved to <home>/backups
			Legacy: false,
		},
		Security: SecurityConfig{
			MemoryLock:          true,
			MinPassphraseLength: DefaultMinPassphraseLength,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.keywarden/keywarden.log",
		},
	}
}
