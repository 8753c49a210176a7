// Package domain defines the core business entities for Corpora.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded text document and its processing status
//   - Chunk: An overlapping text fragment, the atomic unit of embedding
//   - SearchResult: A ranked similarity search hit (ephemeral)
//   - ClusterInfo / AnomalyResult / QualityAssessment: analytics outputs
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
