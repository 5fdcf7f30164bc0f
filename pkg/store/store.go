// Package store provides the public factories for the storage backends
// while keeping implementation details internal. Both factories return an
// unattached types.Store; call Attach with a Config to initialize.
package store

import (
	"github.com/linkwed/linkwed/internal/remote"
	"github.com/linkwed/linkwed/internal/sqlite"
	"github.com/linkwed/linkwed/pkg/types"
)

// NewLocal creates the embedded SQLite backend.
//
// Example:
//
//	s := store.NewLocal()
//	err := s.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".linkwed-data",
//	})
//	defer s.Detach()
func NewLocal() types.Store {
	return sqlite.NewStore()
}

// NewRemote creates the HTTP client backend talking to a running
// linkwed server.
//
// Example:
//
//	s := store.NewRemote()
//	err := s.Attach(types.Config{
//	    Backend: types.BackendServer,
//	    BaseURL: "http://localhost:3000",
//	})
//	defer s.Detach()
func NewRemote() types.Store {
	return remote.NewClient("")
}
