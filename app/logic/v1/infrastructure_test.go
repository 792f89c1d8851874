package v1

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/civitas-ai/civitas-ai/app/statemanager"
	"github.com/civitas-ai/civitas-ai/pkg/object-storage/s3"
	"github.com/civitas-ai/civitas-ai/pkg/types"
)

type fakeDocumentStore struct {
	mu   sync.Mutex
	rows map[string]types.TrafficCopState
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{rows: map[string]types.TrafficCopState{}}
}

func (s *fakeDocumentStore) GetTable(...interface{}) string { return "fake" }

func (s *fakeDocumentStore) Save(ctx context.Context, data types.TrafficCopState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[data.StateID] = data
	return nil
}

func (s *fakeDocumentStore) Get(ctx context.Context, stateID string) (*types.TrafficCopState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[stateID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (s *fakeDocumentStore) Delete(ctx context.Context, stateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, stateID)
	return nil
}

func (s *fakeDocumentStore) List(ctx context.Context, opts types.ListTrafficCopStateOptions, page, pageSize uint64) ([]types.TrafficCopState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []types.TrafficCopState
	for _, row := range s.rows {
		res = append(res, row)
	}
	return res, nil
}

func (s *fakeDocumentStore) DeleteExpired(ctx context.Context, before int64) (int64, error) {
	return 0, nil
}

func (s *fakeDocumentStore) Total(ctx context.Context, opts types.ListTrafficCopStateOptions) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.rows)), nil
}

type fakePolicyStore struct {
	policies []types.GovernancePolicy
}

func (s *fakePolicyStore) GetTable(...interface{}) string { return "fake" }

func (s *fakePolicyStore) Create(ctx context.Context, data types.GovernancePolicy) error {
	s.policies = append(s.policies, data)
	return nil
}

func (s *fakePolicyStore) Get(ctx context.Context, id string) (*types.GovernancePolicy, error) {
	for _, p := range s.policies {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *fakePolicyStore) List(ctx context.Context, opts types.GetGovernancePolicyOptions, page, pageSize uint64) ([]types.GovernancePolicy, error) {
	var res []types.GovernancePolicy
	for _, p := range s.policies {
		if opts.Status != "" && p.Status != opts.Status {
			continue
		}
		if opts.PolicyType != "" && p.PolicyType != opts.PolicyType {
			continue
		}
		res = append(res, p)
	}
	return res, nil
}

func (s *fakePolicyStore) UpdateStatus(ctx context.Context, id, status string) error {
	for i := range s.policies {
		if s.policies[i].ID == id {
			s.policies[i].Status = status
		}
	}
	return nil
}

func (s *fakePolicyStore) Delete(ctx context.Context, id string) error {
	return nil
}

type fakeLineageStore struct {
	records []types.DataLineage
}

func (s *fakeLineageStore) GetTable(...interface{}) string { return "fake" }

func (s *fakeLineageStore) Create(ctx context.Context, data types.DataLineage) error {
	s.records = append(s.records, data)
	return nil
}

func (s *fakeLineageStore) List(ctx context.Context, opts types.GetDataLineageOptions, page, pageSize uint64) ([]types.DataLineage, error) {
	return s.records, nil
}

type fakeStorage struct {
	saved   map[string][]byte
	saveErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: map[string][]byte{}}
}

func (f *fakeStorage) GetStaticDomain() string { return "" }

func (f *fakeStorage) SaveFile(ctx context.Context, fullPath string, content []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[fullPath] = content
	return nil
}

func (f *fakeStorage) DeleteFile(ctx context.Context, fullFilePath string) error {
	delete(f.saved, fullFilePath)
	return nil
}

func (f *fakeStorage) GenGetObjectPreSignURL(path string) (string, error) {
	return "", nil
}

func (f *fakeStorage) DownloadFile(ctx context.Context, filePath string) (*s3.GetObjectResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func newTestInfrastructure() (*DataInfrastructureLogic, *fakeDocumentStore, *fakePolicyStore, *fakeLineageStore, *fakeStorage) {
	document := newFakeDocumentStore()
	policies := &fakePolicyStore{}
	lineage := &fakeLineageStore{}
	storage := newFakeStorage()
	logic := &DataInfrastructureLogic{
		ctx:          context.Background(),
		stateManager: statemanager.New(document, nil),
		policies:     policies,
		lineage:      lineage,
		storage:      storage,
	}
	return logic, document, policies, lineage, storage
}

func TestPromoteStateSkippedWhenEphemeral(t *testing.T) {
	logic, document, _, _, _ := newTestInfrastructure()

	res := logic.PromoteTrafficCopState("wf-1", map[string]any{"importance": "low", "v": 1}, nil, nil)
	if res.Success {
		t.Fatalf("low importance state should not promote mid-session: %+v", res)
	}
	if res.Reason != types.REASON_PROMOTION_NOT_RECOMMENDED {
		t.Fatalf("unexpected reason: %s", res.Reason)
	}
	if res.Data["strategy"] != types.STATE_STRATEGY_EPHEMERAL {
		t.Fatalf("decision should be reported: %#v", res.Data)
	}
	if len(document.rows) != 0 {
		t.Fatal("skipped promotion must not write")
	}
}

func TestPromoteStateToMemoryAtSessionEnd(t *testing.T) {
	logic, _, _, _, _ := newTestInfrastructure()

	res := logic.PromoteTrafficCopState("wf-2", map[string]any{"importance": "low", "v": 1}, map[string]any{"session_ending": true}, nil)
	if !res.Success {
		t.Fatalf("session-ending promotion should succeed: %+v", res)
	}
	if res.Data["backend"] != types.STATE_BACKEND_MEMORY {
		t.Fatalf("ephemeral state belongs in memory: %#v", res.Data)
	}

	got := logic.RetrieveTrafficCopState("wf-2", nil)
	if !got.Success {
		t.Fatalf("promoted state should be retrievable: %+v", got)
	}
	data, _ := got.Data["state_data"].(map[string]any)
	if data["v"] != int64(1) {
		t.Fatalf("state data should round-trip sanitized: %#v", data)
	}
}

func TestPromoteStateToDocument(t *testing.T) {
	logic, document, _, _, _ := newTestInfrastructure()

	res := logic.PromoteTrafficCopState("wf-3", map[string]any{"importance": "critical", "payload": "x"}, nil, nil)
	if !res.Success {
		t.Fatalf("critical state should promote: %+v", res)
	}
	if res.Data["backend"] != types.STATE_BACKEND_DOCUMENT {
		t.Fatalf("critical state belongs in the document tier: %#v", res.Data)
	}
	if _, ok := document.rows["wf-3"]; !ok {
		t.Fatal("document tier should hold the state")
	}

	got := logic.RetrieveTrafficCopState("wf-3", nil)
	if !got.Success || got.Data["backend"] != types.STATE_BACKEND_DOCUMENT {
		t.Fatalf("retrieval should report the backend: %+v", got)
	}
}

func TestPromoteStateStorageFailure(t *testing.T) {
	logic, _, _, _, _ := newTestInfrastructure()

	// normal importance routes to the cache tier, which is not configured
	res := logic.PromoteTrafficCopState("wf-4", map[string]any{"v": "x"}, nil, nil)
	if res.Success {
		t.Fatalf("cache placement should fail without a cache: %+v", res)
	}
	if res.Reason != types.REASON_STORAGE_FAILED {
		t.Fatalf("unexpected reason: %s", res.Reason)
	}
	if res.ErrorCode != types.ERROR_CODE_STATE_PROMOTION {
		t.Fatalf("unexpected error code: %s", res.ErrorCode)
	}
}

func TestPromoteStateExplicitFlagWins(t *testing.T) {
	logic, document, _, _, _ := newTestInfrastructure()

	res := logic.PromoteTrafficCopState("wf-5", map[string]any{"importance": "critical", "promote": false}, nil, nil)
	if res.Success || res.Reason != types.REASON_PROMOTION_NOT_RECOMMENDED {
		t.Fatalf("explicit promote=false should win: %+v", res)
	}
	if len(document.rows) != 0 {
		t.Fatal("vetoed promotion must not write")
	}
}

func TestPromoteStateValidation(t *testing.T) {
	logic, _, _, _, _ := newTestInfrastructure()

	res := logic.PromoteTrafficCopState("", map[string]any{"v": 1}, nil, nil)
	if res.Success || res.ErrorCode != types.ERROR_CODE_STATE_PROMOTION {
		t.Fatalf("missing state id should fail: %+v", res)
	}
}

func TestRetrieveStateNotFound(t *testing.T) {
	logic, _, _, _, _ := newTestInfrastructure()

	res := logic.RetrieveTrafficCopState("nope", nil)
	if res.Success {
		t.Fatalf("missing state should not succeed: %+v", res)
	}
	if res.Reason != types.REASON_STATE_NOT_FOUND {
		t.Fatalf("unexpected reason: %s", res.Reason)
	}
}

func TestCreateGovernancePolicy(t *testing.T) {
	logic, _, policies, _, _ := newTestInfrastructure()

	res := logic.CreateGovernancePolicy("", "retention", "", nil, nil)
	if res.Success || res.ErrorCode != types.ERROR_CODE_COMPLIANCE {
		t.Fatalf("missing name should fail: %+v", res)
	}

	res = logic.CreateGovernancePolicy("pii-guard", "privacy", "blocks raw identifiers", map[string]any{
		"forbidden_fields": []any{"raw_ssn"},
	}, &types.UserContext{TenantID: "tenant-a"})
	if !res.Success {
		t.Fatalf("policy creation should succeed: %+v", res)
	}
	if res.Data["policy_id"] == "" {
		t.Fatalf("policy id should be returned: %#v", res.Data)
	}
	if policies.policies[0].Status != types.POLICY_STATUS_ACTIVE {
		t.Fatalf("new policies start active: %#v", policies.policies[0])
	}
	if policies.policies[0].TenantID == nil || *policies.policies[0].TenantID != "tenant-a" {
		t.Fatalf("tenant not recorded: %#v", policies.policies[0].TenantID)
	}
}

func TestTrackDataLineage(t *testing.T) {
	logic, _, _, lineage, _ := newTestInfrastructure()

	res := logic.TrackDataLineage("", "ingest", "warehouse", "copy", "", nil, nil)
	if res.Success || res.ErrorCode != types.ERROR_CODE_COMPLIANCE {
		t.Fatalf("missing asset id should fail: %+v", res)
	}

	res = logic.TrackDataLineage("asset-1", "ingest", "warehouse", "copy", "anonymize", map[string]any{"rows": 10}, nil)
	if !res.Success {
		t.Fatalf("lineage tracking should succeed: %+v", res)
	}
	rec := lineage.records[0]
	if rec.SourceSystem != "ingest" || rec.TargetSystem != "warehouse" {
		t.Fatalf("unexpected hop: %#v", rec)
	}
	if rec.Transformation == nil || *rec.Transformation != "anonymize" {
		t.Fatalf("transformation not recorded: %#v", rec.Transformation)
	}
}

func TestEnforceGovernanceCompliance(t *testing.T) {
	logic, _, _, _, _ := newTestInfrastructure()

	created := logic.CreateGovernancePolicy("asset-shape", "quality", "", map[string]any{
		"required_fields":  []any{"owner"},
		"forbidden_fields": []any{"raw_ssn"},
	}, nil)
	if !created.Success {
		t.Fatalf("setup policy failed: %+v", created)
	}

	res := logic.EnforceGovernanceCompliance("asset-1", map[string]any{"raw_ssn": "123"}, "", nil)
	if !res.Success {
		t.Fatalf("enforcement itself should succeed: %+v", res)
	}
	if res.Data["compliant"] != false {
		t.Fatalf("asset should be non-compliant: %#v", res.Data)
	}
	violations, _ := res.Data["violations"].([]map[string]any)
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %#v", violations)
	}

	res = logic.EnforceGovernanceCompliance("asset-2", map[string]any{"owner": "transit"}, "", nil)
	if res.Data["compliant"] != true {
		t.Fatalf("asset should be compliant: %#v", res.Data)
	}

	res = logic.EnforceGovernanceCompliance("asset-3", map[string]any{"raw_ssn": "123"}, "privacy", nil)
	if res.Data["policies_evaluated"] != 0 {
		t.Fatalf("type filter should exclude the quality policy: %#v", res.Data)
	}
}

func TestEnforceGovernanceComplianceSizeRule(t *testing.T) {
	logic, _, _, _, _ := newTestInfrastructure()

	created := logic.CreateGovernancePolicy("size-cap", "quality", "", map[string]any{
		"max_size_bytes": float64(16),
	}, nil)
	if !created.Success {
		t.Fatalf("setup policy failed: %+v", created)
	}

	res := logic.EnforceGovernanceCompliance("asset-big", map[string]any{"blob": strings.Repeat("x", 64)}, "", nil)
	if res.Data["compliant"] != false {
		t.Fatalf("oversized asset should violate: %#v", res.Data)
	}
}

func TestProcessContentUpload(t *testing.T) {
	logic, _, _, lineage, storage := newTestInfrastructure()

	res := logic.ProcessContentUpload("readings.csv", nil, nil, nil)
	if res.Success || res.ErrorCode != types.ERROR_CODE_CONTENT_PROCESSING {
		t.Fatalf("empty content should fail: %+v", res)
	}

	res = logic.ProcessContentUpload("readings.csv", []byte("a,b\n1,2\n"), map[string]any{"source": "sensor"}, nil)
	if !res.Success {
		t.Fatalf("upload should succeed: %+v", res)
	}
	path, _ := res.Data["path"].(string)
	if !strings.HasPrefix(path, "/contents/") || !strings.HasSuffix(path, "/readings.csv") {
		t.Fatalf("unexpected path: %s", path)
	}
	if _, ok := storage.saved[path]; !ok {
		t.Fatal("content should land in object storage")
	}
	fileID, _ := res.Data["file_id"].(string)
	if !strings.HasPrefix(fileID, "file_") {
		t.Fatalf("unexpected file id shape: %s", fileID)
	}
	if len(lineage.records) != 1 || lineage.records[0].SourceSystem != "upload-gateway" {
		t.Fatalf("ingestion hop should be tracked: %#v", lineage.records)
	}
}

func TestProcessContentUploadStorageFailure(t *testing.T) {
	logic, _, _, lineage, storage := newTestInfrastructure()
	storage.saveErr = fmt.Errorf("bucket unavailable")

	res := logic.ProcessContentUpload("readings.csv", []byte("x"), nil, nil)
	if res.Success || res.ErrorCode != types.ERROR_CODE_CONTENT_PROCESSING {
		t.Fatalf("storage failure should fail the upload: %+v", res)
	}
	if len(lineage.records) != 0 {
		t.Fatal("failed upload must not record lineage")
	}
}

func TestCoordinateDataWorkflow(t *testing.T) {
	logic, document, _, lineage, _ := newTestInfrastructure()

	steps := []types.WorkflowStep{
		{
			Operation: "promote_state",
			Params: map[string]any{
				"state_id":   "wf-flow",
				"state_data": map[string]any{"importance": "critical"},
			},
		},
		{
			Operation: "track_lineage",
			Params: map[string]any{
				"asset_id":      "asset-1",
				"source_system": "traffic-cop",
				"target_system": "warehouse",
				"operation":     "promote",
			},
		},
	}

	res := logic.CoordinateDataWorkflow("flow-1", steps, nil)
	if !res.Success {
		t.Fatalf("workflow should succeed: %+v", res)
	}
	if res.Data["steps_completed"] != 2 {
		t.Fatalf("unexpected completion count: %#v", res.Data)
	}
	if _, ok := document.rows["wf-flow"]; !ok {
		t.Fatal("promote step should have run")
	}
	if len(lineage.records) != 1 {
		t.Fatal("lineage step should have run")
	}
}

func TestCoordinateDataWorkflowStopsOnFailure(t *testing.T) {
	logic, _, _, lineage, _ := newTestInfrastructure()

	steps := []types.WorkflowStep{
		{
			Operation: "track_lineage",
			Params: map[string]any{
				"asset_id":      "asset-1",
				"source_system": "a",
				"target_system": "b",
			},
		},
		{Operation: "promote_state", Params: map[string]any{}},
		{
			Operation: "track_lineage",
			Params: map[string]any{
				"asset_id":      "asset-2",
				"source_system": "a",
				"target_system": "b",
			},
		},
	}

	res := logic.CoordinateDataWorkflow("flow-2", steps, nil)
	if res.Success {
		t.Fatalf("workflow should stop on the bad step: %+v", res)
	}
	if res.ErrorCode != types.ERROR_CODE_WORKFLOW_COORDINATION {
		t.Fatalf("unexpected error code: %s", res.ErrorCode)
	}
	if res.Data["steps_completed"] != 1 {
		t.Fatalf("only the first step should complete: %#v", res.Data)
	}
	if len(lineage.records) != 1 {
		t.Fatal("steps after the failure must not run")
	}
}

func TestCoordinateDataWorkflowFailureMessage(t *testing.T) {
	logic, _, _, _, _ := newTestInfrastructure()

	steps := []types.WorkflowStep{
		{
			Operation: "promote_state",
			Params: map[string]any{
				"state_id":   "wf-msg",
				"state_data": map[string]any{"payload": "x"},
			},
		},
	}

	res := logic.CoordinateDataWorkflow("flow-msg", steps, nil)
	if res.Success {
		t.Fatalf("workflow should fail without a cache tier: %+v", res)
	}
	if !strings.Contains(res.Error, "storage_failed: cache backend is not configured") {
		t.Fatalf("reason and error should be separated: %s", res.Error)
	}
}

func TestCoordinateDataWorkflowUnknownOperation(t *testing.T) {
	logic, _, _, _, _ := newTestInfrastructure()

	res := logic.CoordinateDataWorkflow("flow-3", []types.WorkflowStep{{Operation: "reticulate_splines"}}, nil)
	if res.Success || res.ErrorCode != types.ERROR_CODE_WORKFLOW_COORDINATION {
		t.Fatalf("unknown operation should fail: %+v", res)
	}

	res = logic.CoordinateDataWorkflow("flow-4", nil, nil)
	if res.Success || res.ErrorCode != types.ERROR_CODE_WORKFLOW_COORDINATION {
		t.Fatalf("empty workflow should fail: %+v", res)
	}
}

func TestGetInfrastructureStatus(t *testing.T) {
	logic, _, _, _, _ := newTestInfrastructure()

	promoted := logic.PromoteTrafficCopState("wf-status", map[string]any{"importance": "low"}, map[string]any{"session_ending": true}, nil)
	if !promoted.Success {
		t.Fatalf("setup promotion failed: %+v", promoted)
	}
	if created := logic.CreateGovernancePolicy("p1", "quality", "", nil, nil); !created.Success {
		t.Fatalf("setup policy failed: %+v", created)
	}

	res := logic.GetInfrastructureStatus(nil)
	if !res.Success {
		t.Fatalf("status should succeed: %+v", res)
	}
	state, _ := res.Data["state"].(map[string]any)
	if state["memory_entries"] != int64(1) {
		t.Fatalf("unexpected tier stats: %#v", state)
	}
	if res.Data["active_policies"] != 1 {
		t.Fatalf("unexpected policy count: %#v", res.Data)
	}
}
