package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lovbase/paragraf/internal/connectors/filesystem"
	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// Ensure ConnectorFactory implements the interface.
var _ driven.ConnectorFactory = (*ConnectorFactory)(nil)

// ConnectorFactory builds connectors from source configuration. The
// filesystem connector is built in; additional types can be registered.
type ConnectorFactory struct {
	mu       sync.RWMutex
	builders map[string]driven.ConnectorBuilder
}

// NewConnectorFactory creates a factory with the built-in connector
// types registered.
func NewConnectorFactory() *ConnectorFactory {
	f := &ConnectorFactory{
		builders: make(map[string]driven.ConnectorBuilder),
	}
	f.Register("filesystem", buildFilesystemConnector)
	return f
}

func buildFilesystemConnector(source domain.Source) (driven.Connector, error) {
	path := source.Config["path"]
	if path == "" {
		return nil, fmt.Errorf("%w: filesystem source %q has no path", domain.ErrInvalidInput, source.ID)
	}
	return filesystem.New(source.ID, path), nil
}

// Register adds a connector builder for the given type.
func (f *ConnectorFactory) Register(connectorType string, builder driven.ConnectorBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[connectorType] = builder
}

// Create returns a Connector for the given source.
func (f *ConnectorFactory) Create(_ context.Context, source domain.Source) (driven.Connector, error) {
	f.mu.RLock()
	builder, ok := f.builders[source.Type]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: connector type %q", domain.ErrUnsupportedType, source.Type)
	}
	return builder(source)
}

// SupportedTypes returns all registered connector types, sorted.
func (f *ConnectorFactory) SupportedTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]string, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// SourceTypes describes the available connector types for UI listings.
func SourceTypes() []domain.SourceType {
	return []domain.SourceType{
		{
			ID:          "filesystem",
			Name:        "Lokal mappe",
			Description: "Indeksér dokumenter fra en lokal mappe",
			ConfigKeys: []domain.ConfigKey{
				{
					Key:         "path",
					Label:       "Mappesti",
					Description: "Sti til mappen med dokumenter",
					Required:    true,
				},
				{
					Key:         "extensions",
					Label:       "Filtyper",
					Description: "Kommasepareret liste, fx pdf,docx,md (tom = alle)",
				},
			},
		},
	}
}

// SourceTypeByID returns the source type description for a connector
// type. Returns domain.ErrNotFound for unknown types.
func SourceTypeByID(id string) (*domain.SourceType, error) {
	for _, st := range SourceTypes() {
		if st.ID == id {
			return &st, nil
		}
	}
	return nil, fmt.Errorf("%w: connector type %q", domain.ErrNotFound, id)
}

// ValidateSourceConfig checks the configuration for a connector type
// against its required keys.
func ValidateSourceConfig(connectorType string, config map[string]string) error {
	st, err := SourceTypeByID(connectorType)
	if err != nil {
		return err
	}

	for _, key := range st.ConfigKeys {
		if key.Required && config[key.Key] == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, key.Key)
		}
	}
	return nil
}
