// Package types defines the invitation document model, the AssetStore and
// SnapshotStore interfaces, and the standard error values shared by the
// local and remote backends.
// See docs/ARCHITECTURE.md § Document Model, § Store Interfaces.
package types
