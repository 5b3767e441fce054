package config

import (
	"fmt"
	"os"
	"strings"
)

// Resolver expands environment references in configuration values.
type Resolver struct {
	lookup func(string) (string, bool)
}

// NewResolver creates a Resolver backed by the process environment.
func NewResolver() *Resolver {
	return &Resolver{lookup: os.LookupEnv}
}

// NewResolverWithLookup creates a Resolver backed by lookup.
func NewResolverWithLookup(lookup func(string) (string, bool)) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve returns value unchanged unless it is exactly "$NAME" or "${NAME}",
// in which case the named variable's value is returned. An unset variable is
// an error.
func (r *Resolver) Resolve(value string) (string, error) {
	name, ok := envReference(value)
	if !ok {
		return value, nil
	}

	v, ok := r.lookup(name)
	if !ok {
		return "", fmt.Errorf("environment variable %q is not set", name)
	}
	return v, nil
}

func envReference(value string) (string, bool) {
	if !strings.HasPrefix(value, "$") {
		return "", false
	}
	name := strings.TrimPrefix(value, "$")
	if strings.HasPrefix(name, "{") {
		if !strings.HasSuffix(name, "}") {
			return "", false
		}
		name = name[1 : len(name)-1]
	}
	if name == "" {
		return "", false
	}
	return name, true
}
