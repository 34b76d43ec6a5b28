// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The central type is Rag, which owns the corpus and both derived
// indices, synchronises documents into them and serves hybrid search.
package services
