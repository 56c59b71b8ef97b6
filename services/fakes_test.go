package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/judo-pools/brackets"
	"github.com/Dosada05/judo-pools/models"
	"github.com/Dosada05/judo-pools/repositories"
	"github.com/Dosada05/judo-pools/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

// memStore is an in-memory database shared by the fake repositories. WithinTx
// restores the previous state when fn fails.
type memStore struct {
	mu          sync.Mutex
	categories  []models.Category
	competitors []models.Competitor
	bouts       []models.Bout
	assignments []models.PoolAssignment
	config      map[string]string
	nextID      int
	failNext    error
}

func newMemStore() *memStore {
	return &memStore{config: make(map[string]string), nextID: 100}
}

type memState struct {
	categories  []models.Category
	competitors []models.Competitor
	bouts       []models.Bout
	assignments []models.PoolAssignment
	config      map[string]string
}

func (s *memStore) save() memState {
	cfg := make(map[string]string, len(s.config))
	for k, v := range s.config {
		cfg[k] = v
	}
	return memState{
		categories:  append([]models.Category(nil), s.categories...),
		competitors: append([]models.Competitor(nil), s.competitors...),
		bouts:       append([]models.Bout(nil), s.bouts...),
		assignments: append([]models.PoolAssignment(nil), s.assignments...),
		config:      cfg,
	}
}

func (s *memStore) restore(st memState) {
	s.categories = st.categories
	s.competitors = st.competitors
	s.bouts = st.bouts
	s.assignments = st.assignments
	s.config = st.config
}

func (s *memStore) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	s.mu.Lock()
	st := s.save()
	fail := s.failNext
	s.failNext = nil
	s.mu.Unlock()

	err := fn(nil)
	if err == nil {
		err = fail
	}
	if err != nil {
		s.mu.Lock()
		s.restore(st)
		s.mu.Unlock()
	}
	return err
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *memStore) loader(tables int) SnapshotLoader {
	return NewSnapshotLoader(memCategories{s}, memCompetitors{s}, memBouts{s}, memAssignments{s}, memConfig{s}, tables, discardLogger())
}

func (s *memStore) addCategory(name string, inStats bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.categories = append(s.categories, models.Category{ID: id, Name: name, IncludeInStats: inStats})
	return id
}

func (s *memStore) addCompetitor(categoryID int, last, club string, weight float64, pool int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	c := models.Competitor{ID: id, CategoryID: categoryID, FirstName: "Judoka", LastName: last, Sex: models.SexMale, Club: club, Weight: weight}
	if pool > 0 {
		c.PoolNumber = intPtr(pool)
	}
	s.competitors = append(s.competitors, c)
	return id
}

func (s *memStore) addBout(categoryID, f1, f2, s1, s2 int, winner *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bouts = append(s.bouts, models.Bout{ID: s.id(), CategoryID: categoryID, Fighter1ID: f1, Fighter2ID: f2, Score1: s1, Score2: s2, WinnerID: winner})
}

func (s *memStore) poolOf(competitorID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.competitors {
		if c.ID == competitorID {
			return c.Pool()
		}
	}
	return -1
}

func (s *memStore) assignment(key models.PoolKey) (models.PoolAssignment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.assignments {
		if a.Key() == key {
			return a, true
		}
	}
	return models.PoolAssignment{}, false
}

func (s *memStore) setAssignment(a models.PoolAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assignments {
		if s.assignments[i].Key() == a.Key() {
			s.assignments[i] = a
			return
		}
	}
	a.ID = s.id()
	s.assignments = append(s.assignments, a)
}

type memCategories struct{ s *memStore }

func (r memCategories) List(ctx context.Context) ([]models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]models.Category(nil), r.s.categories...), nil
}

func (r memCategories) GetByID(ctx context.Context, id int) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, repositories.ErrCategoryNotFound
}

func (r memCategories) Upsert(ctx context.Context, exec repositories.SQLExecutor, category *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, c := range r.s.categories {
		if c.Name == category.Name {
			category.ID = c.ID
			r.s.categories[i] = *category
			return nil
		}
	}
	category.ID = r.s.id()
	r.s.categories = append(r.s.categories, *category)
	return nil
}

type memCompetitors struct{ s *memStore }

func (r memCompetitors) List(ctx context.Context) ([]models.Competitor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Competitor, len(r.s.competitors))
	for i, c := range r.s.competitors {
		if c.PoolNumber != nil {
			c.PoolNumber = intPtr(*c.PoolNumber)
		}
		out[i] = c
	}
	return out, nil
}

func (r memCompetitors) ListByCategory(ctx context.Context, categoryID int) ([]models.Competitor, error) {
	all, _ := r.List(ctx)
	var out []models.Competitor
	for _, c := range all {
		if c.CategoryID == categoryID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memCompetitors) GetByID(ctx context.Context, id int) (*models.Competitor, error) {
	all, _ := r.List(ctx)
	for _, c := range all {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, repositories.ErrCompetitorNotFound
}

func (r memCompetitors) Create(ctx context.Context, exec repositories.SQLExecutor, competitor *models.Competitor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	found := false
	for _, c := range r.s.categories {
		found = found || c.ID == competitor.CategoryID
	}
	if !found {
		return repositories.ErrCompetitorCategoryInvalid
	}
	competitor.ID = r.s.id()
	competitor.CreatedAt = time.Now()
	r.s.competitors = append(r.s.competitors, *competitor)
	return nil
}

func (r memCompetitors) UpdatePools(ctx context.Context, exec repositories.SQLExecutor, updates []models.PoolUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range updates {
		found := false
		for i := range r.s.competitors {
			if r.s.competitors[i].ID == u.CompetitorID {
				r.s.competitors[i].PoolNumber = intPtr(u.PoolNumber)
				found = true
			}
		}
		if !found {
			return repositories.ErrCompetitorNotFound
		}
	}
	return nil
}

func (r memCompetitors) SetOutsideBracket(ctx context.Context, exec repositories.SQLExecutor, id int, flag bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.competitors {
		if r.s.competitors[i].ID == id {
			r.s.competitors[i].OutsideBracket = flag
			return nil
		}
	}
	return repositories.ErrCompetitorNotFound
}

func (r memCompetitors) Update(ctx context.Context, exec repositories.SQLExecutor, competitor *models.Competitor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.competitors {
		c := &r.s.competitors[i]
		if c.ID == competitor.ID {
			c.FirstName = competitor.FirstName
			c.LastName = competitor.LastName
			c.Sex = competitor.Sex
			c.BirthYear = competitor.BirthYear
			c.Club = competitor.Club
			c.Weight = competitor.Weight
			return nil
		}
	}
	return repositories.ErrCompetitorNotFound
}

func (r memCompetitors) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.competitors {
		if r.s.competitors[i].ID == id {
			r.s.competitors = append(r.s.competitors[:i], r.s.competitors[i+1:]...)
			return nil
		}
	}
	return repositories.ErrCompetitorNotFound
}

type memBouts struct{ s *memStore }

func (r memBouts) List(ctx context.Context) ([]models.Bout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]models.Bout(nil), r.s.bouts...), nil
}

func (r memBouts) ListByCategory(ctx context.Context, categoryID int) ([]models.Bout, error) {
	all, _ := r.List(ctx)
	var out []models.Bout
	for _, b := range all {
		if b.CategoryID == categoryID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r memBouts) FindByPair(ctx context.Context, exec repositories.SQLExecutor, categoryID, fighterA, fighterB int) (*models.Bout, error) {
	all, _ := r.ListByCategory(ctx, categoryID)
	want := models.NewPairKey(fighterA, fighterB)
	for _, b := range all {
		if b.PairKey() == want {
			return &b, nil
		}
	}
	return nil, repositories.ErrBoutNotFound
}

func (r memBouts) Create(ctx context.Context, exec repositories.SQLExecutor, bout *models.Bout) error {
	if _, err := r.FindByPair(ctx, exec, bout.CategoryID, bout.Fighter1ID, bout.Fighter2ID); err == nil {
		return repositories.ErrBoutPairConflict
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bout.ID = r.s.id()
	bout.UpdatedAt = time.Now()
	r.s.bouts = append(r.s.bouts, *bout)
	return nil
}

func (r memBouts) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, bout *models.Bout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.bouts {
		if r.s.bouts[i].ID == bout.ID {
			r.s.bouts[i].Score1 = bout.Score1
			r.s.bouts[i].Score2 = bout.Score2
			r.s.bouts[i].WinnerID = bout.WinnerID
			return nil
		}
	}
	return repositories.ErrBoutNotFound
}

func (r memBouts) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.bouts {
		if r.s.bouts[i].ID == id {
			r.s.bouts = append(r.s.bouts[:i], r.s.bouts[i+1:]...)
			return nil
		}
	}
	return repositories.ErrBoutNotFound
}

type memAssignments struct{ s *memStore }

func (r memAssignments) List(ctx context.Context) ([]models.PoolAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := append([]models.PoolAssignment(nil), r.s.assignments...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memAssignments) SavePlacements(ctx context.Context, exec repositories.SQLExecutor, placements []models.PoolAssignment) error {
	for _, p := range placements {
		a, _ := r.s.assignment(p.Key())
		a.CategoryID, a.PoolNumber = p.CategoryID, p.PoolNumber
		a.TableNumber, a.Order = p.TableNumber, p.Order
		r.s.setAssignment(a)
	}
	return nil
}

func (r memAssignments) SetValidated(ctx context.Context, exec repositories.SQLExecutor, key models.PoolKey, validated bool) error {
	a, _ := r.s.assignment(key)
	a.CategoryID, a.PoolNumber = key.CategoryID, key.PoolNumber
	a.Validated = validated
	r.s.setAssignment(a)
	return nil
}

func (r memAssignments) ReplaceCategory(ctx context.Context, exec repositories.SQLExecutor, categoryID int, assignments []models.PoolAssignment) error {
	r.s.mu.Lock()
	kept := r.s.assignments[:0:0]
	for _, a := range r.s.assignments {
		if a.CategoryID != categoryID {
			kept = append(kept, a)
		}
	}
	r.s.assignments = kept
	r.s.mu.Unlock()
	for _, a := range assignments {
		r.s.setAssignment(a)
	}
	return nil
}

type memConfig struct{ s *memStore }

func (r memConfig) List(ctx context.Context) ([]models.ConfigEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ConfigEntry
	for k, v := range r.s.config {
		out = append(out, models.ConfigEntry{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r memConfig) Get(ctx context.Context, key string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.config[key]
	if !ok {
		return "", repositories.ErrConfigNotFound
	}
	return v, nil
}

func (r memConfig) Set(ctx context.Context, exec repositories.SQLExecutor, key, value string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.config[key] = value
	return nil
}

// recordingNotifier keeps every broadcast.
type recordingNotifier struct {
	mu       sync.Mutex
	messages map[string][]brackets.Message
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{messages: make(map[string][]brackets.Message)}
}

func (n *recordingNotifier) BroadcastToRoom(roomID string, message interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if m, ok := message.(brackets.Message); ok {
		n.messages[roomID] = append(n.messages[roomID], m)
	}
}

func (n *recordingNotifier) types(roomID string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, m := range n.messages[roomID] {
		out = append(out, m.Type)
	}
	return out
}

// memUploader records uploaded and deleted keys.
type memUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	err     error
}

func newMemUploader() *memUploader {
	return &memUploader{objects: make(map[string][]byte)}
}

func (u *memUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = data
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return u.err
}

func (u *memUploader) GetPublicURL(key string) string {
	return "https://files.example.test/" + key
}
