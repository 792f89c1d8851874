package v1

import (
	"context"
	"strings"
	"testing"

	"github.com/pgvector/pgvector-go"

	"github.com/civitas-ai/civitas-ai/pkg/types"
	"github.com/civitas-ai/civitas-ai/pkg/utils"
)

type fakeEmbeddingStore struct {
	batches   [][]types.StructuredEmbedding
	lastLimit uint64
	scores    []types.EmbeddingScore
}

func (s *fakeEmbeddingStore) GetTable(...interface{}) string { return "fake" }

func (s *fakeEmbeddingStore) BatchCreate(ctx context.Context, datas []types.StructuredEmbedding) error {
	s.batches = append(s.batches, datas)
	return nil
}

func (s *fakeEmbeddingStore) List(ctx context.Context, opts types.GetEmbeddingsOptions, page, pageSize uint64) ([]types.StructuredEmbedding, error) {
	var res []types.StructuredEmbedding
	for _, batch := range s.batches {
		res = append(res, batch...)
	}
	return res, nil
}

func (s *fakeEmbeddingStore) Query(ctx context.Context, opts types.GetEmbeddingsOptions, vector pgvector.Vector, limit uint64) ([]types.EmbeddingScore, error) {
	s.lastLimit = limit
	return s.scores, nil
}

func (s *fakeEmbeddingStore) DeleteByFile(ctx context.Context, contentID, fileID string) error {
	return nil
}

type fakeNodeStore struct {
	batches  [][]types.SemanticGraphNode
	existing map[string]types.SemanticGraphNode
	lastOpts types.GetGraphOptions
}

func (s *fakeNodeStore) GetTable(...interface{}) string { return "fake" }

func (s *fakeNodeStore) BatchCreate(ctx context.Context, datas []types.SemanticGraphNode) error {
	s.batches = append(s.batches, datas)
	return nil
}

func (s *fakeNodeStore) List(ctx context.Context, opts types.GetGraphOptions, page, pageSize uint64) ([]types.SemanticGraphNode, error) {
	s.lastOpts = opts
	var res []types.SemanticGraphNode
	for _, batch := range s.batches {
		res = append(res, batch...)
	}
	return res, nil
}

func (s *fakeNodeStore) GetByEntityID(ctx context.Context, contentID, fileID, entityID string) (*types.SemanticGraphNode, error) {
	node, ok := s.existing[entityID]
	if !ok {
		return nil, nil
	}
	return &node, nil
}

func (s *fakeNodeStore) DeleteByFile(ctx context.Context, contentID, fileID string) error {
	return nil
}

type fakeEdgeStore struct {
	batches [][]types.SemanticGraphEdge
}

func (s *fakeEdgeStore) GetTable(...interface{}) string { return "fake" }

func (s *fakeEdgeStore) BatchCreate(ctx context.Context, datas []types.SemanticGraphEdge) error {
	s.batches = append(s.batches, datas)
	return nil
}

func (s *fakeEdgeStore) List(ctx context.Context, opts types.GetGraphOptions, page, pageSize uint64) ([]types.SemanticGraphEdge, error) {
	var res []types.SemanticGraphEdge
	for _, batch := range s.batches {
		res = append(res, batch...)
	}
	return res, nil
}

func (s *fakeEdgeStore) DeleteByFile(ctx context.Context, contentID, fileID string) error {
	return nil
}

type fakeCorrelationStore struct {
	records    []types.CorrelationMap
	lastFileID string
}

func (s *fakeCorrelationStore) GetTable(...interface{}) string { return "fake" }

func (s *fakeCorrelationStore) Create(ctx context.Context, data types.CorrelationMap) error {
	s.records = append(s.records, data)
	return nil
}

func (s *fakeCorrelationStore) Get(ctx context.Context, contentID, fileID, tenantID string) (*types.CorrelationMap, error) {
	s.lastFileID = fileID
	if len(s.records) == 0 {
		return nil, nil
	}
	rec := s.records[len(s.records)-1]
	return &rec, nil
}

func (s *fakeCorrelationStore) DeleteByFile(ctx context.Context, contentID, fileID string) error {
	return nil
}

func newTestSemantic() (*SemanticLogic, *fakeEmbeddingStore, *fakeNodeStore, *fakeEdgeStore, *fakeCorrelationStore) {
	embeddings := &fakeEmbeddingStore{}
	nodes := &fakeNodeStore{existing: map[string]types.SemanticGraphNode{}}
	edges := &fakeEdgeStore{}
	correlations := &fakeCorrelationStore{}
	logic := &SemanticLogic{
		ctx:          context.Background(),
		embeddings:   embeddings,
		nodes:        nodes,
		edges:        edges,
		correlations: correlations,
	}
	return logic, embeddings, nodes, edges, correlations
}

func TestStoreStructuredEmbeddings(t *testing.T) {
	logic, embeddings, _, _, _ := newTestSemantic()

	entries := []types.EmbeddingInput{
		{
			ColumnName:       "temperature",
			MeaningEmbedding: []float32{0.1, 0.2},
			SemanticMeaning:  "sensor reading",
		},
		{
			ChunkIndex:     utils.Pointer(int64(3)),
			ChunkEmbedding: []float32{0.3, 0.4},
			ChunkText:      "third chunk",
		},
	}

	res, err := logic.StoreStructuredEmbeddings("content-1", "file-1", entries, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.StoredCount != 2 {
		t.Fatalf("expected 2 stored, got %d", res.StoredCount)
	}
	if len(embeddings.batches) != 1 {
		t.Fatalf("batch should be written in one call, got %d", len(embeddings.batches))
	}

	batch := embeddings.batches[0]
	if !strings.HasPrefix(batch[0].ID, "emb_file-1_temperature_") {
		t.Fatalf("column key shape wrong: %s", batch[0].ID)
	}
	if !strings.HasPrefix(batch[1].ID, "emb_file-1_3_") {
		t.Fatalf("chunk key shape wrong: %s", batch[1].ID)
	}
	if !batch[0].MeaningEmbedding.Valid || batch[0].ChunkEmbedding.Valid {
		t.Fatalf("vector nullability wrong: %#v", batch[0])
	}
	if batch[1].ChunkIndex == nil || *batch[1].ChunkIndex != 3 {
		t.Fatalf("chunk index not kept: %#v", batch[1].ChunkIndex)
	}
}

func TestStoreStructuredEmbeddingsRejectsBadEntry(t *testing.T) {
	logic, embeddings, _, _, _ := newTestSemantic()

	entries := []types.EmbeddingInput{
		{ColumnName: "ok", MeaningEmbedding: []float32{0.2}},
		{SemanticMeaning: "neither column nor chunk"},
	}
	if _, err := logic.StoreStructuredEmbeddings("content-1", "file-1", entries, nil); err == nil {
		t.Fatal("expected batch rejection")
	}
	if len(embeddings.batches) != 0 {
		t.Fatal("rejected batch must write nothing")
	}

	if _, err := logic.StoreStructuredEmbeddings("", "file-1", nil, nil); err == nil {
		t.Fatal("expected error for missing scope")
	}
}

func TestStoreStructuredEmbeddingsRequiresColumnVectors(t *testing.T) {
	logic, embeddings, _, _, _ := newTestSemantic()

	entries := []types.EmbeddingInput{
		{ColumnName: "col_a", SemanticMeaning: "described but never embedded"},
	}
	if _, err := logic.StoreStructuredEmbeddings("content-1", "file-1", entries, nil); err == nil {
		t.Fatal("expected rejection for column entry without embedding vectors")
	}
	if len(embeddings.batches) != 0 {
		t.Fatal("rejected batch must write nothing")
	}
}

func TestVectorSearch(t *testing.T) {
	logic, embeddings, _, _, _ := newTestSemantic()
	embeddings.scores = []types.EmbeddingScore{{Cos: 0.91}}

	if _, err := logic.VectorSearch(nil, types.GetEmbeddingsOptions{}, 10); err == nil {
		t.Fatal("expected error for empty query vector")
	}

	res, err := logic.VectorSearch([]float32{0.5, 0.5}, types.GetEmbeddingsOptions{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].Cos != 0.91 {
		t.Fatalf("unexpected scores: %#v", res)
	}
	if embeddings.lastLimit != VECTOR_SEARCH_DEFAULT_LIMIT {
		t.Fatalf("zero limit should default, got %d", embeddings.lastLimit)
	}
}

func TestStoreSemanticGraph(t *testing.T) {
	logic, _, nodes, edges, _ := newTestSemantic()

	graph := types.SemanticGraphInput{
		Nodes: []types.GraphNodeInput{
			{EntityID: "e1", EntityName: "intersection", Embedding: []float32{0.1}},
			{EntityID: "e2", EntityName: "sensor"},
		},
		Edges: []types.GraphEdgeInput{
			{SourceEntityID: "e1", TargetEntityID: "e2", RelationshipType: "monitors"},
		},
	}

	res, err := logic.StoreSemanticGraph("content-1", "file-1", graph, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.StoredNodes != 2 || res.StoredEdges != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}

	nodeBatch := nodes.batches[0]
	if !strings.HasPrefix(nodeBatch[0].ID, "node_file-1_e1_") {
		t.Fatalf("node key shape wrong: %s", nodeBatch[0].ID)
	}

	edge := edges.batches[0][0]
	if edge.FromKey != nodeBatch[0].ID || edge.ToKey != nodeBatch[1].ID {
		t.Fatalf("edge endpoints should resolve to batch node keys: %#v", edge)
	}
}

func TestStoreSemanticGraphResolvesStoredNodes(t *testing.T) {
	logic, _, nodes, edges, _ := newTestSemantic()
	nodes.existing["prev"] = types.SemanticGraphNode{ID: "node_file-1_prev_abcd1234", EntityID: "prev"}

	graph := types.SemanticGraphInput{
		Nodes: []types.GraphNodeInput{{EntityID: "e1", EntityName: "zone"}},
		Edges: []types.GraphEdgeInput{{SourceEntityID: "e1", TargetEntityID: "prev"}},
	}
	if _, err := logic.StoreSemanticGraph("content-1", "file-1", graph, nil); err != nil {
		t.Fatal(err)
	}
	if edges.batches[0][0].ToKey != "node_file-1_prev_abcd1234" {
		t.Fatalf("edge should resolve against stored nodes: %#v", edges.batches[0][0])
	}
}

func TestStoreSemanticGraphRejectsUnresolvedEdge(t *testing.T) {
	logic, _, nodes, edges, _ := newTestSemantic()

	graph := types.SemanticGraphInput{
		Nodes: []types.GraphNodeInput{{EntityID: "e1", EntityName: "zone"}},
		Edges: []types.GraphEdgeInput{{SourceEntityID: "e1", TargetEntityID: "ghost"}},
	}
	if _, err := logic.StoreSemanticGraph("content-1", "file-1", graph, nil); err == nil {
		t.Fatal("expected rejection for unresolved endpoint")
	}
	if len(nodes.batches) != 0 || len(edges.batches) != 0 {
		t.Fatal("rejected graph must write nothing")
	}
}

func TestStoreSemanticGraphRejectsBadNode(t *testing.T) {
	logic, _, nodes, _, _ := newTestSemantic()

	graph := types.SemanticGraphInput{
		Nodes: []types.GraphNodeInput{{EntityID: "e1"}},
	}
	if _, err := logic.StoreSemanticGraph("content-1", "file-1", graph, nil); err == nil {
		t.Fatal("expected rejection for node without name")
	}
	if len(nodes.batches) != 0 {
		t.Fatal("rejected graph must write nothing")
	}
}

func TestCorrelationMapRoundTrip(t *testing.T) {
	logic, _, _, _, correlations := newTestSemantic()

	got, err := logic.GetCorrelationMap("content-1", "file-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("missing correlation should be an empty map, got %#v", got)
	}

	id, err := logic.StoreCorrelationMap("content-1", "file-1", map[string]any{"temperature": []any{"humidity"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "corr_") {
		t.Fatalf("unexpected id shape: %s", id)
	}
	if correlations.records[0].Correlation == nil {
		t.Fatal("correlation tree should be stored")
	}

	got, err = logic.GetCorrelationMap("content-1", "file-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got["temperature"]; !ok {
		t.Fatalf("stored correlation should round-trip: %#v", got)
	}
}

func TestGetCorrelationMapByContentOnly(t *testing.T) {
	logic, _, _, _, correlations := newTestSemantic()

	if _, err := logic.StoreCorrelationMap("content-1", "file-1", map[string]any{"speed": []any{"volume"}}, nil); err != nil {
		t.Fatal(err)
	}

	got, err := logic.GetCorrelationMap("content-1", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got["speed"]; !ok {
		t.Fatalf("content scoped lookup should find the map: %#v", got)
	}
	if correlations.lastFileID != "" {
		t.Fatalf("file filter should stay unset: %q", correlations.lastFileID)
	}
}

func TestGetSemanticGraphContentScope(t *testing.T) {
	logic, _, nodes, _, _ := newTestSemantic()

	if _, err := logic.GetSemanticGraph("content-1", "", nil); err != nil {
		t.Fatal(err)
	}
	if nodes.lastOpts.ContentID != "content-1" || nodes.lastOpts.FileID != "" {
		t.Fatalf("unexpected graph scope: %+v", nodes.lastOpts)
	}
}
