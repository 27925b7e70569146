package config

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

const schemaSource = `
#Config: {
	vm: {
		memory:       "sparse" | "arena"
		"step-limit": int & >=0
		trace:        bool
	}
	log: {
		verbosity: int & >=-4 & <=5
		file:      string
	}
	network: {
		parallelism: int & >=1
	}
	store: {
		path: string & !=""
	}
}
`

// Validate checks c against the configuration schema.
func Validate(c *Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := ctx.Encode(c)
	if err := v.Err(); err != nil {
		return fmt.Errorf("config encode: %w", err)
	}

	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %s", errors.Details(err, nil))
	}
	return nil
}
