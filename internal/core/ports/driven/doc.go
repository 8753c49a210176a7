// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: document persistence
//   - VectorIndex: chunk + embedding storage with similarity search
//   - EmbeddingService: generates vector embeddings
//   - TextExtractor: pulls text out of uploaded pdf/txt files
//   - ModelStore: persistence for fitted model artifacts
//
// # Model-fitter strategies
//
// Clusterer, AnomalyDetector and QualityClassifier are opaque
// statistical strategies. The core never looks inside them; alternate
// algorithms are swappable without touching orchestration logic.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
