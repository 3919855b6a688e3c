// Package registry holds the static mapping between supported blockchain
// networks and the asset symbols tradable on each of them. The table feeds
// both the dispatch layer (symbol to contract address resolution) and the
// extraction prompt templates (live lists of allowed networks and assets).
package registry
