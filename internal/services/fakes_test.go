package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/saeid-a/StudioBookingBack/internal/apperr"
	"github.com/saeid-a/StudioBookingBack/internal/models"
	"github.com/saeid-a/StudioBookingBack/internal/ports"
)

// memoryStore is an in-memory ports.UnitOfWork. A transaction holds the
// store mutex for its whole duration and restores a snapshot on error.
type memoryStore struct {
	mu        sync.Mutex
	contracts map[string]models.Contract
	sessions  map[string]models.Session
	profiles  map[string]models.Profile
	nextID    int
	locks     []string

	createSessionErr error
	forceStale       bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		contracts: map[string]models.Contract{},
		sessions:  map[string]models.Session{},
		profiles:  map[string]models.Profile{},
	}
}

func (m *memoryStore) Contracts() ports.ContractRepository {
	return &memoryContracts{m: m, locking: true}
}

func (m *memoryStore) Sessions() ports.SessionRepository {
	return &memorySessions{m: m, locking: true}
}

func (m *memoryStore) InTx(_ context.Context, fn func(tx ports.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	contracts := make(map[string]models.Contract, len(m.contracts))
	for k, v := range m.contracts {
		contracts[k] = v
	}
	sessions := make(map[string]models.Session, len(m.sessions))
	for k, v := range m.sessions {
		sessions[k] = v
	}

	if err := fn(&memoryTx{m: m}); err != nil {
		m.contracts = contracts
		m.sessions = sessions
		return err
	}
	return nil
}

func (m *memoryStore) addContract(c models.Contract) models.Contract {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		m.nextID++
		c.ID = fmt.Sprintf("contract-%d", m.nextID)
	}
	m.contracts[c.ID] = c
	return c
}

func (m *memoryStore) addSession(s models.Session) models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		m.nextID++
		s.ID = fmt.Sprintf("session-%d", m.nextID)
	}
	m.sessions[s.ID] = s
	return s
}

func (m *memoryStore) contract(id string) models.Contract {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contracts[id]
}

func (m *memoryStore) session(id string) models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

func (m *memoryStore) sessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type memoryTx struct {
	m *memoryStore
}

func (t *memoryTx) Contracts() ports.ContractRepository {
	return &memoryContracts{m: t.m}
}

func (t *memoryTx) Sessions() ports.SessionRepository {
	return &memorySessions{m: t.m}
}

func (t *memoryTx) LockContract(_ context.Context, contractID string) error {
	t.m.locks = append(t.m.locks, "contract:"+contractID)
	return nil
}

func (t *memoryTx) LockTrainerDay(_ context.Context, trainerID string, date int64) error {
	t.m.locks = append(t.m.locks, fmt.Sprintf("trainer:%s:%d", trainerID, date))
	return nil
}

type memoryContracts struct {
	m       *memoryStore
	locking bool
}

func (r *memoryContracts) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.m.mu.Lock()
	return r.m.mu.Unlock
}

func (r *memoryContracts) GetByID(_ context.Context, id string) (*models.Contract, error) {
	defer r.lock()()
	c, ok := r.m.contracts[id]
	if !ok {
		return nil, apperr.NotFound("contract")
	}
	return &c, nil
}

func (r *memoryContracts) Create(_ context.Context, input ports.CreateContractInput) (*models.Contract, error) {
	defer r.lock()()
	r.m.nextID++
	c := models.Contract{
		ID:          fmt.Sprintf("contract-%d", r.m.nextID),
		Kind:        input.Kind,
		Status:      models.ContractNewlyCreated,
		Money:       input.Money,
		Credits:     input.Credits,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		PurchasedBy: input.PurchasedBy,
		SaleBy:      input.SaleBy,
		CreatedAt:   time.Now(),
	}
	r.m.contracts[c.ID] = c
	return &c, nil
}

func (r *memoryContracts) UpdateStatusIfCurrent(_ context.Context, id string, current, next models.ContractStatus) (*models.Contract, error) {
	defer r.lock()()
	c, ok := r.m.contracts[id]
	if !ok || c.Status != current || r.m.forceStale {
		return nil, ports.ErrStaleWrite
	}
	c.Status = next
	r.m.contracts[id] = c
	return &c, nil
}

func (r *memoryContracts) List(_ context.Context, filter ports.ContractListFilter) ([]models.Contract, int, error) {
	defer r.lock()()
	var matched []models.Contract
	for _, c := range r.m.contracts {
		if filter.SaleBy != "" && c.SaleBy != filter.SaleBy {
			continue
		}
		if filter.PurchasedBy != "" && c.PurchasedBy != filter.PurchasedBy {
			continue
		}
		excluded := false
		for _, status := range filter.ExcludeStatus {
			if c.Status == status {
				excluded = true
			}
		}
		if excluded {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start := min(filter.Offset, total)
	end := min(start+filter.Limit, total)
	return matched[start:end], total, nil
}

func (r *memoryContracts) Update(_ context.Context, id string, fields ports.ContractFields) (*models.Contract, error) {
	defer r.lock()()
	c, ok := r.m.contracts[id]
	if !ok {
		return nil, apperr.NotFound("contract")
	}
	if fields.Kind != nil {
		c.Kind = *fields.Kind
	}
	if fields.Money != nil {
		c.Money = *fields.Money
	}
	if fields.Credits != nil {
		c.Credits = fields.Credits
	}
	if fields.StartDate != nil {
		c.StartDate = fields.StartDate
	}
	if fields.EndDate != nil {
		c.EndDate = fields.EndDate
	}
	if fields.SaleBy != nil {
		c.SaleBy = *fields.SaleBy
	}
	r.m.contracts[id] = c
	return &c, nil
}

type memorySessions struct {
	m       *memoryStore
	locking bool
}

func (r *memorySessions) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.m.mu.Lock()
	return r.m.mu.Unlock
}

func (r *memorySessions) GetByID(_ context.Context, id string) (*models.Session, error) {
	defer r.lock()()
	s, ok := r.m.sessions[id]
	if !ok {
		return nil, apperr.NotFound("session")
	}
	return &s, nil
}

func (r *memorySessions) Create(_ context.Context, input ports.CreateSessionInput) (*models.Session, error) {
	defer r.lock()()
	if r.m.createSessionErr != nil {
		return nil, r.m.createSessionErr
	}
	r.m.nextID++
	s := models.Session{
		ID:         fmt.Sprintf("session-%d", r.m.nextID),
		ContractID: input.ContractID,
		CreatedBy:  input.CreatedBy,
		TeachBy:    input.TeachBy,
		Date:       input.Date,
		From:       input.From,
		To:         input.To,
		Status:     models.SessionNewlyCreated,
		CreatedAt:  time.Now(),
	}
	r.m.sessions[s.ID] = s
	return &s, nil
}

func (r *memorySessions) UpdateStatusIfCurrent(_ context.Context, id string, current, next models.SessionStatus) (*models.Session, error) {
	defer r.lock()()
	s, ok := r.m.sessions[id]
	if !ok || s.Status != current || r.m.forceStale {
		return nil, ports.ErrStaleWrite
	}
	s.Status = next
	r.m.sessions[id] = s
	return &s, nil
}

func (r *memorySessions) UpdateSchedule(_ context.Context, id string, input ports.ScheduleInput) (*models.Session, error) {
	defer r.lock()()
	s, ok := r.m.sessions[id]
	if !ok {
		return nil, apperr.NotFound("session")
	}
	s.Date, s.From, s.To = input.Date, input.From, input.To
	r.m.sessions[id] = s
	return &s, nil
}

func (r *memorySessions) ListByContract(_ context.Context, contractID string) ([]models.Session, error) {
	defer r.lock()()
	return r.m.filterSessions(func(s models.Session) bool { return s.ContractID == contractID }), nil
}

func (r *memorySessions) ListByTrainerAndDate(_ context.Context, trainerID string, date int64) ([]models.Session, error) {
	defer r.lock()()
	return r.m.filterSessions(func(s models.Session) bool { return s.TeachBy == trainerID && s.Date == date }), nil
}

func (r *memorySessions) List(_ context.Context, filter ports.SessionListFilter) ([]models.Session, int, error) {
	defer r.lock()()
	matched := r.m.filterSessions(func(s models.Session) bool {
		if filter.TeachBy != "" && s.TeachBy != filter.TeachBy {
			return false
		}
		if filter.PurchasedBy != "" && r.m.contracts[s.ContractID].PurchasedBy != filter.PurchasedBy {
			return false
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, s.Status) {
			return false
		}
		if filter.StartDate != nil && s.Date < *filter.StartDate {
			return false
		}
		if filter.EndDate != nil && s.Date > *filter.EndDate {
			return false
		}
		return true
	})
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date > matched[j].Date
		}
		return matched[i].From > matched[j].From
	})
	total := len(matched)
	start := min(filter.Offset, total)
	end := min(start+filter.Limit, total)
	return matched[start:end], total, nil
}

func (r *memorySessions) ExpireMany(_ context.Context, ids []string) ([]string, error) {
	defer r.lock()()
	var expired []string
	for _, id := range ids {
		s, ok := r.m.sessions[id]
		if !ok {
			continue
		}
		switch s.Status {
		case models.SessionNewlyCreated, models.SessionPTConfirmed, models.SessionUserCheckedIn:
			s.Status = models.SessionExpired
			r.m.sessions[id] = s
			expired = append(expired, id)
		}
	}
	return expired, nil
}

func (m *memoryStore) filterSessions(keep func(models.Session) bool) []models.Session {
	var out []models.Session
	for _, s := range m.sessions {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memoryProfiles struct {
	mu       sync.Mutex
	profiles map[string]models.Profile
}

func newMemoryProfiles(profiles ...models.Profile) *memoryProfiles {
	p := &memoryProfiles{profiles: map[string]models.Profile{}}
	for _, profile := range profiles {
		p.profiles[profile.ActorID] = profile
	}
	return p
}

func (p *memoryProfiles) GetByActorID(_ context.Context, actorID string) (*models.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	profile, ok := p.profiles[actorID]
	if !ok {
		return nil, apperr.NotFound("profile")
	}
	return &profile, nil
}

func (p *memoryProfiles) Create(_ context.Context, input ports.CreateProfileInput) (*models.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.profiles[input.ActorID]; exists {
		return nil, apperr.Invalid("profile already exists")
	}
	profile := models.Profile{
		ActorID:   input.ActorID,
		Role:      input.Role,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}
	p.profiles[input.ActorID] = profile
	return &profile, nil
}

func (p *memoryProfiles) ListByRole(_ context.Context, role models.Role, limit, offset int) ([]models.Profile, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var matched []models.Profile
	for _, profile := range p.profiles {
		if profile.Role == role {
			matched = append(matched, profile)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ActorID < matched[j].ActorID })
	total := len(matched)
	start := min(offset, total)
	end := min(start+limit, total)
	return matched[start:end], total, nil
}

func (p *memoryProfiles) UpdateNames(_ context.Context, actorID string, firstName, lastName *string) (*models.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	profile, ok := p.profiles[actorID]
	if !ok {
		return nil, apperr.NotFound("profile")
	}
	if firstName != nil {
		profile.FirstName = firstName
	}
	if lastName != nil {
		profile.LastName = lastName
	}
	p.profiles[actorID] = profile
	return &profile, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.EventType, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Type)
	}
	return out
}

var errStoreDown = errors.New("store unavailable")
