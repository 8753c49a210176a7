package domain

// QualityLabel describes the assessed quality of a chunk.
type QualityLabel string

const (
	QualityHigh      QualityLabel = "high"
	QualityMedium    QualityLabel = "medium"
	QualityLow       QualityLabel = "low"
	QualityAnomalous QualityLabel = "anomalous"
)

// EncodeQualityLabel maps a label to the fixed ordinal scheme used for
// training: high:0, medium:1, low:2, everything else:3.
func EncodeQualityLabel(label string) int {
	switch QualityLabel(label) {
	case QualityHigh:
		return 0
	case QualityMedium:
		return 1
	case QualityLow:
		return 2
	default:
		return 3
	}
}

// DecodeQualityLabel is the inverse of EncodeQualityLabel. Unknown
// codes decode to low.
func DecodeQualityLabel(code int) QualityLabel {
	switch code {
	case 0:
		return QualityHigh
	case 1:
		return QualityMedium
	case 2:
		return QualityLow
	case 3:
		return QualityAnomalous
	default:
		return QualityLow
	}
}

// ClusterInfo summarises one non-empty cluster.
type ClusterInfo struct {
	// ID is the cluster label.
	ID int

	// Size is the number of member chunks.
	Size int

	// Centroid is the mean of the member embeddings.
	Centroid []float32

	// TopTerms holds up to 5 characteristic terms, ranked by term
	// frequency over member texts. Empty for single-member clusters.
	TopTerms []string

	// Representative holds up to 3 member texts in encounter order.
	Representative []string
}

// AnomalyResult is the per-chunk output of anomaly detection.
type AnomalyResult struct {
	// ChunkID identifies the assessed chunk.
	ChunkID string

	// IsAnomaly flags the chunk as anomalous.
	IsAnomaly bool

	// Score is the continuous anomaly score. Its range depends on the
	// fitter; lower means more anomalous.
	Score float64

	// Preview is the first part of the chunk content, for display.
	Preview string
}

// QualityAssessment is the per-chunk output of quality classification.
type QualityAssessment struct {
	// ChunkID identifies the assessed chunk.
	ChunkID string

	// Label is the predicted quality label.
	Label QualityLabel

	// Confidence is the classifier's top class probability, in [0,1].
	Confidence float64

	// ContentLength is the length of the assessed chunk content.
	ContentLength int
}

// QualitySample is one labelled training example. The referenced chunk
// must already carry an embedding.
type QualitySample struct {
	ChunkID string
	Label   string
}

// TrainingMetrics reports classifier performance on the internal
// validation split.
type TrainingMetrics struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64

	// Samples is the total number of training samples supplied.
	Samples int
}

// ProjectionPoint is one chunk projected into two dimensions for
// visualisation. The projection is recomputed on every request.
type ProjectionPoint struct {
	ChunkID    string
	DocumentID string

	X float64
	Y float64

	// ClusterID is the last persisted cluster assignment, or
	// ClusterUnassigned when the chunk was never clustered.
	ClusterID int

	// Preview is the first part of the chunk content.
	Preview string
}

// CorpusStatus aggregates document and chunk counts.
type CorpusStatus struct {
	TotalDocuments int
	TotalChunks    int

	// ByStatus counts documents per processing status.
	ByStatus map[ProcessingStatus]int

	// AvgChunksPerDocument is 0 when there are no documents.
	AvgChunksPerDocument float64
}
