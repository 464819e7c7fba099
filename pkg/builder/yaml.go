package builder

import (
	"github.com/tokenlay/tokenlay-go/internal/config"
	"github.com/tokenlay/tokenlay-go/internal/models"
)

// FromYAML starts a builder from a YAML config file after loading envFiles.
func FromYAML(path string, envFiles []string) (*Builder, error) {
	if len(envFiles) > 0 {
		config.LoadEnvFiles(envFiles)
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	return builderFromConfig(cfg), nil
}

// FromEnv starts a builder from TOKENLAY_* environment variables.
func FromEnv() (*Builder, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	return builderFromConfig(cfg), nil
}

func builderFromConfig(cfg models.ClientConfig) *Builder {
	cfg = cfg.Clone()
	if cfg.Metadata == nil {
		cfg.Metadata = models.Metadata{}
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}
	return &Builder{cfg: cfg}
}
