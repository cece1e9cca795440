package configs

import (
	"fmt"

	"github.com/yeisme/ebookshelf/pkg/rule"
)

// Validate 按 rule 标签校验配置，只检查当前启用的后端.
func (c *AppConfig) Validate() error {
	targets := []any{&c.Server, &c.DB, &c.Log, &c.Auth, &c.Catalog}

	switch c.Blob.Type {
	case BlobLocal, BlobS3:
	default:
		return fmt.Errorf("invalid config: unsupported blob type %q", c.Blob.Type)
	}

	if c.Sweep.Enabled {
		targets = append(targets, &c.Sweep)
	}

	if c.Tracing.Enabled {
		targets = append(targets, &c.Tracing)
	}

	if c.CircuitBreaker.Enabled {
		targets = append(targets, &c.CircuitBreaker)
	}

	for _, t := range targets {
		if err := rule.ValidateStruct(t); err != nil {
			if verrs := rule.Errors(err); verrs != nil {
				return fmt.Errorf("invalid config: %w", verrs)
			}

			return fmt.Errorf("invalid config: %w", err)
		}
	}

	return nil
}
