package teams

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/trailteams-backend/internal/memberships"
	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	"github.com/angelmondragon/trailteams-backend/pkg/enums"
	"github.com/angelmondragon/trailteams-backend/pkg/outbox"
)

type fakeStore struct {
	mu          sync.Mutex
	teams       map[uuid.UUID]models.Team
	memberships map[uuid.UUID]models.TeamMembership
	users       map[uuid.UUID]models.User

	// beforeTransition runs ahead of the conditional status write.
	beforeTransition func(id uuid.UUID)
	// takenOnWrite reports codes as colliding on Create/Update.
	takenOnWrite map[string]bool
	// missExisting makes ExistsByTeamAndUser miss rows, as a concurrent
	// insert that committed after the check would.
	missExisting bool
	// beforeMembershipInsert runs ahead of the membership insert.
	beforeMembershipInsert func()
	// external holds changes committed by other writers during the running
	// transaction; a rollback keeps them.
	external []func(*fakeStore)
}

// concurrent applies change as if another transaction had committed it.
func (s *fakeStore) concurrent(change func(*fakeStore)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	change(s)
	s.external = append(s.external, change)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		teams:        map[uuid.UUID]models.Team{},
		memberships:  map[uuid.UUID]models.TeamMembership{},
		users:        map[uuid.UUID]models.User{},
		takenOnWrite: map[string]bool{},
	}
}

type fakeTeamsRepo struct{ s *fakeStore }

func (r *fakeTeamsRepo) WithTx(*gorm.DB) Repository { return r }

func (r *fakeTeamsRepo) Create(ctx context.Context, team *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.takenOnWrite[team.InviteCode] {
		return ErrInviteCodeTaken
	}
	for _, existing := range r.s.teams {
		if existing.InviteCode == team.InviteCode {
			return ErrInviteCodeTaken
		}
	}
	r.s.teams[team.ID] = *team
	return nil
}

func (r *fakeTeamsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	team, ok := r.s.teams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &team, nil
}

func (r *fakeTeamsRepo) FindByInviteCode(ctx context.Context, code string) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, team := range r.s.teams {
		if team.InviteCode == code {
			team := team
			return &team, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTeamsRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Team
	for _, id := range ids {
		if team, ok := r.s.teams[id]; ok {
			out = append(out, team)
		}
	}
	return out, nil
}

func (r *fakeTeamsRepo) Update(ctx context.Context, team *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[team.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if r.s.takenOnWrite[team.InviteCode] {
		return ErrInviteCodeTaken
	}
	r.s.teams[team.ID] = *team
	return nil
}

func (r *fakeTeamsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.teams, id)
	return nil
}

func (r *fakeTeamsRepo) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, team := range r.s.teams {
		if team.InviteCode == code {
			return true, nil
		}
	}
	return false, nil
}

type fakeMembershipsRepo struct{ s *fakeStore }

func (r *fakeMembershipsRepo) WithTx(*gorm.DB) memberships.Repository { return r }

func (r *fakeMembershipsRepo) Create(ctx context.Context, m *models.TeamMembership) error {
	if r.s.beforeMembershipInsert != nil {
		r.s.beforeMembershipInsert()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[m.TeamID]; !ok {
		return memberships.ErrTeamGone
	}
	for _, existing := range r.s.memberships {
		if existing.TeamID == m.TeamID && existing.UserID == m.UserID {
			return memberships.ErrDuplicateMembership
		}
	}
	r.s.memberships[m.ID] = *m
	return nil
}

func (r *fakeMembershipsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.TeamMembership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.memberships[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r *fakeMembershipsRepo) FindByTeamAndUser(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMembership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.memberships {
		if m.TeamID == teamID && m.UserID == userID {
			m := m
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMembershipsRepo) filter(keep func(models.TeamMembership) bool) []models.TeamMembership {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.TeamMembership
	for _, m := range r.s.memberships {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *fakeMembershipsRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]models.TeamMembership, error) {
	return r.filter(func(m models.TeamMembership) bool { return m.TeamID == teamID }), nil
}

func (r *fakeMembershipsRepo) ListByTeamAndStatus(ctx context.Context, teamID uuid.UUID, status enums.MembershipStatus) ([]models.TeamMembership, error) {
	return r.filter(func(m models.TeamMembership) bool { return m.TeamID == teamID && m.Status == status }), nil
}

func (r *fakeMembershipsRepo) ListApprovedByUser(ctx context.Context, userID uuid.UUID) ([]models.TeamMembership, error) {
	return r.filter(func(m models.TeamMembership) bool {
		return m.UserID == userID && m.Status == enums.MembershipStatusApproved
	}), nil
}

func (r *fakeMembershipsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.memberships[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.memberships, id)
	return nil
}

func (r *fakeMembershipsRepo) DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var removed int64
	for id, m := range r.s.memberships {
		if m.TeamID == teamID {
			delete(r.s.memberships, id)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeMembershipsRepo) ExistsByTeamAndUser(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	miss := r.s.missExisting
	r.s.mu.Unlock()
	if miss {
		return false, nil
	}
	_, err := r.FindByTeamAndUser(ctx, teamID, userID)
	return err == nil, nil
}

func (r *fakeMembershipsRepo) CountApprovedByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	rows, _ := r.ListByTeamAndStatus(ctx, teamID, enums.MembershipStatusApproved)
	return int64(len(rows)), nil
}

func (r *fakeMembershipsRepo) CountApprovedByTeams(ctx context.Context, teamIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := map[uuid.UUID]int64{}
	for _, id := range teamIDs {
		count, _ := r.CountApprovedByTeam(ctx, id)
		if count > 0 {
			out[id] = count
		}
	}
	return out, nil
}

func (r *fakeMembershipsRepo) TransitionFromPending(ctx context.Context, id uuid.UUID, next enums.MembershipStatus, joinTime *time.Time, at time.Time) error {
	if r.s.beforeTransition != nil {
		r.s.beforeTransition(id)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.memberships[id]
	if !ok || m.Status != enums.MembershipStatusPending {
		return memberships.ErrNotPending
	}
	m.Status = next
	m.JoinTime = joinTime
	m.UpdatedAt = at
	r.s.memberships[id] = m
	return nil
}

func (r *fakeMembershipsRepo) ListApprovedUserIDsByTeams(ctx context.Context, teamIDs []uuid.UUID) ([]uuid.UUID, error) {
	wanted := map[uuid.UUID]bool{}
	for _, id := range teamIDs {
		wanted[id] = true
	}
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, m := range r.filter(func(m models.TeamMembership) bool {
		return wanted[m.TeamID] && m.Status == enums.MembershipStatusApproved
	}) {
		if !seen[m.UserID] {
			seen[m.UserID] = true
			out = append(out, m.UserID)
		}
	}
	return out, nil
}

type fakeUsers struct{ s *fakeStore }

func (f *fakeUsers) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := f.s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// fakeIdentity hands out one stable id per open id and registers a profile.
type fakeIdentity struct {
	s   *fakeStore
	ids map[string]uuid.UUID
}

func (f *fakeIdentity) ResolveOrCreate(ctx context.Context, openID string) (uuid.UUID, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if id, ok := f.ids[openID]; ok {
		return id, nil
	}
	id := uuid.New()
	f.ids[openID] = id
	f.s.users[id] = models.User{ID: id, OpenID: openID, Nickname: "hiker-" + openID}
	return id, nil
}

// fakeTx runs one transaction at a time and restores the store when fn fails.
type fakeTx struct {
	s  *fakeStore
	mu *sync.Mutex
}

func newFakeTx(s *fakeStore) fakeTx {
	return fakeTx{s: s, mu: &sync.Mutex{}}
}

func (f fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if f.s == nil {
		return fn(nil)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	teams, members := f.s.snapshot()
	if err := fn(nil); err != nil {
		f.s.restore(teams, members)
		return err
	}
	f.s.mu.Lock()
	f.s.external = nil
	f.s.mu.Unlock()
	return nil
}

func (s *fakeStore) snapshot() (map[uuid.UUID]models.Team, map[uuid.UUID]models.TeamMembership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.external = nil
	teams := make(map[uuid.UUID]models.Team, len(s.teams))
	for id, team := range s.teams {
		teams[id] = team
	}
	members := make(map[uuid.UUID]models.TeamMembership, len(s.memberships))
	for id, m := range s.memberships {
		members[id] = m
	}
	return teams, members
}

func (s *fakeStore) restore(teams map[uuid.UUID]models.Team, members map[uuid.UUID]models.TeamMembership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = teams
	s.memberships = members
	for _, change := range s.external {
		change(s)
	}
	s.external = nil
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []outbox.DomainEvent
	err    error
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) types() []enums.OutboxEventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]enums.OutboxEventType, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.EventType)
	}
	return out
}

type fakeRecorder struct {
	mu          sync.Mutex
	outcomes    map[string][]string
	transitions map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{outcomes: map[string][]string{}, transitions: map[string]int{}}
}

func (f *fakeRecorder) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes[operation] = append(f.outcomes[operation], outcome)
}

func (f *fakeRecorder) IncTransition(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions[event]++
}

type harness struct {
	svc      Service
	store    *fakeStore
	identity *fakeIdentity
	outbox   *fakeOutbox
	recorder *fakeRecorder
	clock    *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newHarness(t *testing.T, codes func() string) *harness {
	t.Helper()
	store := newFakeStore()
	h := &harness{
		store:    store,
		identity: &fakeIdentity{s: store, ids: map[string]uuid.UUID{}},
		outbox:   &fakeOutbox{},
		recorder: newFakeRecorder(),
		clock:    &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	svc, err := NewService(ServiceParams{
		Teams:       &fakeTeamsRepo{s: store},
		Memberships: &fakeMembershipsRepo{s: store},
		Users:       &fakeUsers{s: store},
		Identity:    h.identity,
		Tx:          newFakeTx(store),
		Outbox:      h.outbox,
		Metrics:     h.recorder,
		Clock:       h.clock.Now,
		InviteCodes: codes,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	h.svc = svc
	return h
}

func (h *harness) userID(openID string) uuid.UUID {
	id, _ := h.identity.ResolveOrCreate(context.Background(), openID)
	return id
}

// sequenceCodes returns each code in order, then falls back to random ones.
func sequenceCodes(codes ...string) func() string {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		if i < len(codes) {
			code := codes[i]
			i++
			return code
		}
		return GenerateInviteCode()
	}
}
