package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/example/dotgraph/internal/core/graph"
	"github.com/example/dotgraph/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockDefinitionRepository implements secondary.DefinitionRepository for testing.
type mockDefinitionRepository struct {
	defs      map[string]*secondary.DefinitionRecord
	createErr error
}

func newMockDefinitionRepository() *mockDefinitionRepository {
	return &mockDefinitionRepository{defs: make(map[string]*secondary.DefinitionRecord)}
}

func (m *mockDefinitionRepository) Create(ctx context.Context, def *secondary.DefinitionRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.defs[def.Path]; ok {
		return &graph.ConflictError{Kind: graph.KindDefinition, ID: def.Path}
	}
	stored := *def
	if stored.Status == "" {
		stored.Status = "active"
	}
	if stored.CreatedAt == "" {
		stored.CreatedAt = "2026-01-01T00:00:00Z"
	}
	m.defs[def.Path] = &stored
	return nil
}

func (m *mockDefinitionRepository) Get(ctx context.Context, path string) (*secondary.DefinitionRecord, error) {
	def, ok := m.defs[path]
	if !ok {
		return nil, graph.NotFound(graph.KindDefinition, path)
	}
	copied := *def
	return &copied, nil
}

func (m *mockDefinitionRepository) List(ctx context.Context, filters secondary.DefinitionFilters) ([]*secondary.DefinitionRecord, error) {
	var out []*secondary.DefinitionRecord
	for _, def := range m.defs {
		if filters.Status != "" && def.Status != filters.Status {
			continue
		}
		if filters.Tag != "" && !containsString(def.Tags, filters.Tag) {
			continue
		}
		copied := *def
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (m *mockDefinitionRepository) AdoptCanonical(ctx context.Context, path, contentHash string) error {
	def, ok := m.defs[path]
	if !ok {
		return graph.NotFound(graph.KindDefinition, path)
	}
	def.CanonicalHash = contentHash
	return nil
}

func (m *mockDefinitionRepository) Retire(ctx context.Context, path string) error {
	def, ok := m.defs[path]
	if !ok {
		return graph.NotFound(graph.KindDefinition, path)
	}
	def.Status = "retired"
	return nil
}

func (m *mockDefinitionRepository) Exists(ctx context.Context, path string) (bool, error) {
	_, ok := m.defs[path]
	return ok, nil
}

// mockMachineRepository implements secondary.MachineRepository for testing.
type mockMachineRepository struct {
	machines map[string]*secondary.MachineRecord
	listErr  error
}

func newMockMachineRepository() *mockMachineRepository {
	return &mockMachineRepository{machines: make(map[string]*secondary.MachineRecord)}
}

func (m *mockMachineRepository) Create(ctx context.Context, machine *secondary.MachineRecord) error {
	if _, ok := m.machines[machine.ID]; ok {
		return &graph.ConflictError{Kind: graph.KindMachine, ID: machine.ID}
	}
	stored := *machine
	if stored.Status == "" {
		stored.Status = "active"
	}
	m.machines[machine.ID] = &stored
	return nil
}

func (m *mockMachineRepository) Get(ctx context.Context, id string) (*secondary.MachineRecord, error) {
	machine, ok := m.machines[id]
	if !ok {
		return nil, graph.NotFound(graph.KindMachine, id)
	}
	copied := *machine
	return &copied, nil
}

func (m *mockMachineRepository) List(ctx context.Context, filters secondary.MachineFilters) ([]*secondary.MachineRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*secondary.MachineRecord
	for _, machine := range m.machines {
		if filters.Status != "" && machine.Status != filters.Status {
			continue
		}
		copied := *machine
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockMachineRepository) Retire(ctx context.Context, id string) error {
	machine, ok := m.machines[id]
	if !ok {
		return graph.NotFound(graph.KindMachine, id)
	}
	machine.Status = "retired"
	return nil
}

func (m *mockMachineRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.machines[id]
	return ok, nil
}

// mockSnapshotRepository implements secondary.SnapshotRepository for testing.
// Create mirrors the SQL adapter's transaction: either the snapshot, its
// edges and the last-seen update all land, or none do.
type mockSnapshotRepository struct {
	snaps     []*secondary.SnapshotRecord
	edges     *mockEdgeRepository
	machines  *mockMachineRepository
	createErr error
}

func newMockSnapshotRepository(edges *mockEdgeRepository, machines *mockMachineRepository) *mockSnapshotRepository {
	return &mockSnapshotRepository{edges: edges, machines: machines}
}

func (m *mockSnapshotRepository) Create(ctx context.Context, snap *secondary.SnapshotRecord, edges []*secondary.EdgeRecord, machineLastSeen string) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.edges != nil && m.edges.createErr != nil && len(edges) > 0 {
		return m.edges.createErr
	}
	for _, s := range m.snaps {
		if s.DefinitionPath == snap.DefinitionPath && s.MachineID == snap.MachineID && s.ObservedAt == snap.ObservedAt {
			return &graph.ConflictError{Kind: graph.KindSnapshot, ID: snap.ID, Detail: "duplicate observed-at"}
		}
	}
	copied := *snap
	m.snaps = append(m.snaps, &copied)
	for _, e := range edges {
		if err := m.edges.Create(ctx, e); err != nil {
			return err
		}
	}
	if machineLastSeen != "" && m.machines != nil {
		if machine, ok := m.machines.machines[snap.MachineID]; ok {
			machine.LastSeenAt = machineLastSeen
		}
	}
	return nil
}

func (m *mockSnapshotRepository) Get(ctx context.Context, id string) (*secondary.SnapshotRecord, error) {
	for _, s := range m.snaps {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, graph.NotFound(graph.KindSnapshot, id)
}

func (m *mockSnapshotRepository) Latest(ctx context.Context, definitionPath, machineID string) (*secondary.SnapshotRecord, error) {
	var latest *secondary.SnapshotRecord
	for _, s := range m.snaps {
		if s.DefinitionPath != definitionPath || s.MachineID != machineID {
			continue
		}
		if latest == nil || s.ObservedAt > latest.ObservedAt {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (m *mockSnapshotRepository) LatestPerMachine(ctx context.Context, definitionPath string, asOf int64) ([]*secondary.SnapshotRecord, error) {
	latest := make(map[string]*secondary.SnapshotRecord)
	for _, s := range m.snaps {
		if s.DefinitionPath != definitionPath || s.ObservedAt > asOf {
			continue
		}
		if prev, ok := latest[s.MachineID]; !ok || s.ObservedAt > prev.ObservedAt {
			latest[s.MachineID] = s
		}
	}
	var ids []string
	for id := range latest {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*secondary.SnapshotRecord, 0, len(ids))
	for _, id := range ids {
		copied := *latest[id]
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockSnapshotRepository) History(ctx context.Context, definitionPath, machineID string) ([]*secondary.SnapshotRecord, error) {
	var out []*secondary.SnapshotRecord
	for _, s := range m.snaps {
		if s.DefinitionPath == definitionPath && s.MachineID == machineID {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ObservedAt < out[j].ObservedAt })
	return out, nil
}

// mockAnnotationRepository implements secondary.AnnotationRepository for testing.
// Secondary references live in the companion edge mock; List consults it for
// TouchingIDs the same way the SQL adapter consults the edges table. Create
// mirrors the SQL adapter's transaction: a failed write stores neither the
// annotation nor any edge.
type mockAnnotationRepository struct {
	mu        sync.Mutex
	anns      map[string]*secondary.AnnotationRecord
	edges     *mockEdgeRepository
	next      int
	createErr error
}

func newMockAnnotationRepository(edges *mockEdgeRepository) *mockAnnotationRepository {
	return &mockAnnotationRepository{anns: make(map[string]*secondary.AnnotationRecord), edges: edges}
}

func (m *mockAnnotationRepository) Create(ctx context.Context, ann *secondary.AnnotationRecord, edges []*secondary.EdgeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if m.edges.createErr != nil && len(edges) > 0 {
		return m.edges.createErr
	}
	stored := *ann
	if stored.CreatedAt == "" {
		m.next++
		stored.CreatedAt = fmt.Sprintf("2026-01-01T00:00:%02dZ", m.next)
	}
	m.anns[ann.ID] = &stored
	for _, e := range edges {
		if err := m.edges.Create(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockAnnotationRepository) Get(ctx context.Context, id string) (*secondary.AnnotationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ann, ok := m.anns[id]
	if !ok {
		return nil, graph.NotFound(graph.KindAnnotation, id)
	}
	copied := *ann
	return &copied, nil
}

func (m *mockAnnotationRepository) List(ctx context.Context, filters secondary.AnnotationFilters) ([]*secondary.AnnotationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.AnnotationRecord
	for _, ann := range m.anns {
		if len(filters.Kinds) > 0 && !containsString(filters.Kinds, ann.Kind) {
			continue
		}
		if filters.Status != "" && ann.Status != filters.Status {
			continue
		}
		if filters.PrimaryID != "" && ann.PrimaryID != filters.PrimaryID {
			continue
		}
		if len(filters.TouchingIDs) > 0 && !m.touches(ann, filters.TouchingIDs) {
			continue
		}
		copied := *ann
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (m *mockAnnotationRepository) touches(ann *secondary.AnnotationRecord, ids []string) bool {
	if containsString(ids, ann.PrimaryID) {
		return true
	}
	m.edges.mu.Lock()
	defer m.edges.mu.Unlock()
	for _, e := range m.edges.records {
		if e.Kind == string(graph.EdgeReferences) && e.FromID == ann.ID && containsString(ids, e.ToID) {
			return true
		}
	}
	return false
}

func (m *mockAnnotationRepository) MarkResolved(ctx context.Context, id, resolvedByID string, edge *secondary.EdgeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ann, ok := m.anns[id]
	if !ok {
		return graph.NotFound(graph.KindAnnotation, id)
	}
	if edge != nil && m.edges.createErr != nil {
		return m.edges.createErr
	}
	ann.Status = "resolved"
	ann.ResolvedByID = resolvedByID
	ann.ResolvedAt = "2026-01-02T00:00:00Z"
	if edge != nil {
		if err := m.edges.Create(ctx, edge); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockAnnotationRepository) GetNextID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := 0
	for id := range m.anns {
		var n int
		if _, err := fmt.Sscanf(id, "ANN-%d", &n); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("ANN-%03d", max+1), nil
}

// mockEdgeRepository implements secondary.EdgeRepository for testing.
type mockEdgeRepository struct {
	mu        sync.Mutex
	records   []*secondary.EdgeRecord
	createErr error
}

func newMockEdgeRepository() *mockEdgeRepository {
	return &mockEdgeRepository{}
}

func (m *mockEdgeRepository) Create(ctx context.Context, edge *secondary.EdgeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, e := range m.records {
		if e.Kind == edge.Kind && e.FromID == edge.FromID && e.ToID == edge.ToID {
			return nil
		}
	}
	copied := *edge
	if copied.ID == "" {
		copied.ID = fmt.Sprintf("edge-%d", len(m.records)+1)
	}
	m.records = append(m.records, &copied)
	return nil
}

func (m *mockEdgeRepository) Query(ctx context.Context, pattern secondary.EdgePattern) ([]*secondary.EdgeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.EdgeRecord
	for _, e := range m.records {
		if pattern.Kind != "" && e.Kind != string(pattern.Kind) {
			continue
		}
		if pattern.FromID != "" && e.FromID != pattern.FromID {
			continue
		}
		if pattern.ToID != "" && e.ToID != pattern.ToID {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockEdgeRepository) DeleteByFrom(ctx context.Context, kind graph.EdgeKind, fromID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*secondary.EdgeRecord
	for _, e := range m.records {
		if e.Kind == string(kind) && e.FromID == fromID {
			continue
		}
		kept = append(kept, e)
	}
	m.records = kept
	return nil
}

func (m *mockEdgeRepository) has(kind graph.EdgeKind, fromID, toID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.records {
		if e.Kind == string(kind) && e.FromID == fromID && e.ToID == toID {
			return true
		}
	}
	return false
}

// mockDriftReportRepository implements secondary.DriftReportRepository for testing.
type mockDriftReportRepository struct {
	reports map[string]*secondary.DriftReportRecord
	edges   *mockEdgeRepository
}

func newMockDriftReportRepository(edges *mockEdgeRepository) *mockDriftReportRepository {
	return &mockDriftReportRepository{reports: make(map[string]*secondary.DriftReportRecord), edges: edges}
}

func (m *mockDriftReportRepository) Replace(ctx context.Context, report *secondary.DriftReportRecord, explains []*secondary.EdgeRecord) error {
	if err := m.edges.DeleteByFrom(ctx, graph.EdgeExplains, report.ID); err != nil {
		return err
	}
	copied := *report
	m.reports[report.DefinitionPath] = &copied
	for _, e := range explains {
		if err := m.edges.Create(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockDriftReportRepository) GetByDefinition(ctx context.Context, definitionPath string) (*secondary.DriftReportRecord, error) {
	report, ok := m.reports[definitionPath]
	if !ok {
		return nil, graph.NotFound(graph.KindDriftReport, definitionPath)
	}
	copied := *report
	return &copied, nil
}

// mockResolver implements secondary.EntityResolver for testing.
type mockResolver struct {
	kinds map[string]graph.EntityKind
}

func newMockResolver() *mockResolver {
	return &mockResolver{kinds: make(map[string]graph.EntityKind)}
}

func (m *mockResolver) add(id string, kind graph.EntityKind) {
	m.kinds[id] = kind
}

func (m *mockResolver) ResolveKind(ctx context.Context, id string) (graph.EntityKind, bool, error) {
	kind, ok := m.kinds[id]
	return kind, ok, nil
}

// mockSemanticIndex implements secondary.SemanticIndex for testing.
type mockSemanticIndex struct {
	mu        sync.Mutex
	indexed   map[string]string
	searchIDs []string
	indexErr  error
	searchErr error
}

func newMockSemanticIndex() *mockSemanticIndex {
	return &mockSemanticIndex{indexed: make(map[string]string)}
}

func (m *mockSemanticIndex) Index(ctx context.Context, entityID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexErr != nil {
		return m.indexErr
	}
	m.indexed[entityID] = text
	return nil
}

func (m *mockSemanticIndex) Search(ctx context.Context, query string, k int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.searchIDs != nil {
		return m.searchIDs, nil
	}
	var ids []string
	for id, text := range m.indexed {
		if strings.Contains(strings.ToLower(text), strings.ToLower(query)) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
