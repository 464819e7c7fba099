package builder

import "github.com/tokenlay/tokenlay-go/internal/models"

// WithUsage records every proxied call in the given database.
func (b *Builder) WithUsage(cfg models.DatabaseConfig) *Builder {
	b.cfg.Usage = &cfg
	return b
}

// WithSQLiteUsage records every proxied call in a local SQLite file.
func (b *Builder) WithSQLiteUsage(path string) *Builder {
	return b.WithUsage(models.DatabaseConfig{
		Type:         models.SQLite,
		FilePath:     path,
		MaxOpenConns: 1,
	})
}
