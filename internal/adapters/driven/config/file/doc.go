// Package file provides the TOML-backed implementation of the
// configuration store, persisted under the ragdex config directory.
package file
