package factory

import (
	"ConnSpectra/internal/config"
	"ConnSpectra/internal/model"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
)

// WriterFactory defines a function that creates a report writer from its definition.
type WriterFactory func(def config.WriterDef, report config.ReportConfig) (model.Writer, error)

// registry holds the mapping of writer types to their factory functions.
var registry = make(map[string]WriterFactory)

// RegisterWriter registers a new writer type with its factory function.
func RegisterWriter(name string, factory WriterFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("writer type '%s' already registered", name))
	}
	registry[name] = factory
}

// Registered returns the names of all registered writer types.
func Registered() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds every enabled writer in the report config.
// A writer that fails to initialize is skipped with a warning; an unknown type is an error.
func Create(cfg config.ReportConfig) ([]model.Writer, error) {
	writers := make([]model.Writer, 0, len(cfg.Writers))

	for _, def := range cfg.Writers {
		if !def.Enabled {
			continue
		}

		factory, ok := registry[def.Type]
		if !ok {
			return nil, fmt.Errorf("unknown writer type: '%s'", def.Type)
		}

		writer, err := factory(def, cfg)
		if err != nil {
			log.Warnf("Failed to create writer type '%s': %v, skipping.", def.Type, err)
			continue
		}
		log.Infof("Created report writer '%s'", def.Type)
		writers = append(writers, writer)
	}

	return writers, nil
}
