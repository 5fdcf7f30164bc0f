// Shared helpers for linkwed CLI commands.
package main

import (
	"fmt"

	"github.com/linkwed/linkwed/pkg/store"
	"github.com/linkwed/linkwed/pkg/types"
)

// attachStore creates and attaches the backend named by config.yaml. The
// caller must defer s.Detach().
func attachStore() (types.Store, error) {
	cfg := types.Config{
		Backend: configBackend,
		BaseURL: configBaseURL,
	}

	var s types.Store
	switch cfg.Backend {
	case types.BackendServer:
		s = store.NewRemote()
	default:
		dataDir, err := resolveDataDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = dataDir
		s = store.NewLocal()
	}

	if err := s.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}
	return s, nil
}
