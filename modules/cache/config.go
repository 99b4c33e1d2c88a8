package cache

import (
	"fmt"
	"time"
)

// Names of the caches used by the books service.
const (
	BooksByCategory      = "booksByCategory"
	BookByTitleAndAuthor = "bookByTitleAndAuthor"
)

// Config is parsed under the CACHE_ prefix.
type Config struct {
	// Disabled turns every cache into a pass-through.
	Disabled   bool          `env:"DISABLED"`
	KeyPrefix  string        `env:"KEY_PREFIX" envDefault:"books:cache"`
	DefaultTTL time.Duration `env:"DEFAULT_TTL" envDefault:"10m"`
	// ClientSide serves reads from the rueidis client-side cache. The redis
	// tracking prefixes must cover KeyPrefix.
	ClientSide bool `env:"CLIENT_SIDE"`

	BooksByCategoryTTL      time.Duration `env:"BOOKS_BY_CATEGORY_TTL" envDefault:"5m"`
	BookByTitleAndAuthorTTL time.Duration `env:"BOOK_BY_TITLE_AND_AUTHOR_TTL" envDefault:"10m"`

	// EvictDelay repeats write evictions after the expected replica lag; 0 turns it off.
	EvictDelay time.Duration `env:"EVICT_DELAY" envDefault:"2s"`
}

// TTL returns the entry lifetime configured for the named cache.
func (c Config) TTL(name string) time.Duration {
	switch name {
	case BooksByCategory:
		if c.BooksByCategoryTTL > 0 {
			return c.BooksByCategoryTTL
		}
	case BookByTitleAndAuthor:
		if c.BookByTitleAndAuthorTTL > 0 {
			return c.BookByTitleAndAuthorTTL
		}
	}
	return c.DefaultTTL
}

// Namespace is the key prefix of the named cache, e.g. "books:cache:booksByCategory".
func (c Config) Namespace(name string) string {
	if c.KeyPrefix == "" {
		return name
	}
	return fmt.Sprintf("%s:%s", c.KeyPrefix, name)
}

func (c Config) Validate() error {
	if c.DefaultTTL <= 0 {
		return fmt.Errorf("cache: default ttl must be positive, got %s", c.DefaultTTL)
	}
	if c.BooksByCategoryTTL < 0 || c.BookByTitleAndAuthorTTL < 0 {
		return fmt.Errorf("cache: ttl must not be negative")
	}
	if c.EvictDelay < 0 {
		return fmt.Errorf("cache: evict delay must not be negative, got %s", c.EvictDelay)
	}
	return nil
}
