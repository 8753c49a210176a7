package cli

import (
	"context"
	"time"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

// --- Mock implementations ---

type mockIngestService struct {
	docs      map[string]*domain.Document
	uploadErr error
	removed   []string
}

func (m *mockIngestService) Ingest(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	return doc, nil
}

func (m *mockIngestService) Upload(_ context.Context, _ string, docType domain.DocumentType, filename string) (*domain.Document, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	return &domain.Document{
		ID:       "doc-new",
		Filename: filename,
		Type:     docType,
		Status:   domain.StatusCompleted,
		Stats:    domain.DocumentStats{ChunksCount: 3},
	}, nil
}

func (m *mockIngestService) Get(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *mockIngestService) List(_ context.Context, _, _ int) ([]domain.Document, error) {
	out := make([]domain.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (m *mockIngestService) Remove(_ context.Context, id string) error {
	if _, ok := m.docs[id]; !ok {
		return domain.ErrNotFound
	}
	m.removed = append(m.removed, id)
	return nil
}

type mockSearchService struct {
	results []domain.SearchResult
	err     error
}

func (m *mockSearchService) Search(_ context.Context, _ string, _ domain.SearchOptions) ([]domain.SearchResult, error) {
	return m.results, m.err
}

type mockClusteringService struct {
	clusters []domain.ClusterInfo
	err      error
}

func (m *mockClusteringService) Cluster(_ context.Context, _ int) ([]domain.ClusterInfo, error) {
	return m.clusters, m.err
}

type mockAnomalyService struct {
	results []domain.AnomalyResult
	err     error
}

func (m *mockAnomalyService) Detect(_ context.Context, _ float64) ([]domain.AnomalyResult, error) {
	return m.results, m.err
}

type mockQualityService struct {
	metrics     domain.TrainingMetrics
	assessments []domain.QualityAssessment
	trainErr    error
	predictErr  error
	trained     []domain.QualitySample
}

func (m *mockQualityService) Train(_ context.Context, samples []domain.QualitySample) (domain.TrainingMetrics, error) {
	if m.trainErr != nil {
		return domain.TrainingMetrics{}, m.trainErr
	}
	m.trained = samples
	m.metrics.Samples = len(samples)
	return m.metrics, nil
}

func (m *mockQualityService) Predict(_ context.Context, _ []string) ([]domain.QualityAssessment, error) {
	return m.assessments, m.predictErr
}

type mockStatusService struct {
	status *domain.CorpusStatus
	points []domain.ProjectionPoint
	err    error
}

func (m *mockStatusService) Status(_ context.Context) (*domain.CorpusStatus, error) {
	return m.status, m.err
}

func (m *mockStatusService) Projection(_ context.Context) ([]domain.ProjectionPoint, error) {
	return m.points, m.err
}

// setupTestServices wires mock services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	oldIngest := ingestService
	oldSearch := searchService
	oldClustering := clusteringService
	oldAnomaly := anomalyService
	oldQuality := qualityService
	oldStatus := statusService

	ingestService = &mockIngestService{
		docs: map[string]*domain.Document{
			"doc-1": {
				ID:        "doc-1",
				Filename:  "report.txt",
				Type:      domain.DocumentTypeTXT,
				Status:    domain.StatusCompleted,
				CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
				Stats:     domain.DocumentStats{ChunksCount: 4},
			},
		},
	}
	searchService = &mockSearchService{
		results: []domain.SearchResult{
			{ChunkID: "chunk-1", DocumentID: "doc-1", Content: "matching text", Score: 0.91},
		},
	}
	clusteringService = &mockClusteringService{
		clusters: []domain.ClusterInfo{
			{ID: 0, Size: 3, TopTerms: []string{"report", "quarterly"}, Representative: []string{"first chunk"}},
		},
	}
	anomalyService = &mockAnomalyService{
		results: []domain.AnomalyResult{
			{ChunkID: "chunk-1", IsAnomaly: false, Score: -0.3, Preview: "normal text"},
			{ChunkID: "chunk-2", IsAnomaly: true, Score: -0.8, Preview: "odd text"},
		},
	}
	qualityService = &mockQualityService{
		metrics: domain.TrainingMetrics{Accuracy: 0.9, Precision: 0.85, Recall: 0.8, F1: 0.82},
		assessments: []domain.QualityAssessment{
			{ChunkID: "chunk-1", Label: domain.QualityHigh, Confidence: 0.93, ContentLength: 200},
		},
	}
	statusService = &mockStatusService{
		status: &domain.CorpusStatus{
			TotalDocuments: 2,
			TotalChunks:    8,
			ByStatus: map[domain.ProcessingStatus]int{
				domain.StatusCompleted: 2,
			},
			AvgChunksPerDocument: 4,
		},
		points: []domain.ProjectionPoint{
			{ChunkID: "chunk-1", DocumentID: "doc-1", X: 0.1, Y: -0.2, ClusterID: 0, Preview: "text"},
		},
	}

	return func() {
		ingestService = oldIngest
		searchService = oldSearch
		clusteringService = oldClustering
		anomalyService = oldAnomaly
		qualityService = oldQuality
		statusService = oldStatus
	}
}
