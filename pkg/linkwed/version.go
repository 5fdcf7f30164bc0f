// Package linkwed exposes build-level metadata about the module.
package linkwed

// Version is the semantic version of the linkwed module.
const Version = "0.1.0"
