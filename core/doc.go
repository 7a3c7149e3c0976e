// Package core contains the canonical relay domain contracts, entities, and
// configuration. Adapters (transport, directory, store) depend on this
// package; core must not depend on any adapter.
package core
