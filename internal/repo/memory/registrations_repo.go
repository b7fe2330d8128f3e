package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chancity/tournamenthub/internal/domain/job"
	"github.com/chancity/tournamenthub/internal/domain/registration"
)

type RegistrationsRepo struct {
	mu    sync.RWMutex
	items map[string]registration.Registration
	jobs  *JobsRepo
}

func NewRegistrationsRepo(jobs *JobsRepo) *RegistrationsRepo {
	return &RegistrationsRepo{
		items: make(map[string]registration.Registration),
		jobs:  jobs,
	}
}

func (r *RegistrationsRepo) Create(ctx context.Context, reg registration.Registration, jobReqs []job.CreateRequest) (registration.Registration, error) {
	if err := ctx.Err(); err != nil {
		return registration.Registration{}, err
	}

	r.mu.Lock()
	r.items[reg.ID] = reg
	r.mu.Unlock()

	if r.jobs != nil {
		for _, req := range jobReqs {
			if _, err := r.jobs.Create(ctx, req); err != nil {
				return registration.Registration{}, err
			}
		}
	}

	return reg, nil
}

func (r *RegistrationsRepo) GetByID(_ context.Context, id string) (registration.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.items[id]
	if !ok {
		return registration.Registration{}, registration.ErrNotFound
	}
	return reg, nil
}

func matches(reg registration.Registration, f registration.ListFilter) bool {
	if f.Status != "" && reg.Status != f.Status {
		return false
	}

	s := strings.ToLower(strings.TrimSpace(f.Search))
	if s == "" {
		return true
	}

	return strings.Contains(strings.ToLower(reg.TeamName), s) ||
		strings.Contains(strings.ToLower(reg.ContactName), s) ||
		strings.Contains(strings.ToLower(reg.Email), s)
}

func (r *RegistrationsRepo) List(_ context.Context, f registration.ListFilter) ([]registration.Registration, int, error) {
	r.mu.RLock()
	all := make([]registration.Registration, 0, len(r.items))
	for _, reg := range r.items {
		if matches(reg, f) {
			all = append(all, reg)
		}
	}
	r.mu.RUnlock()

	// newest first, id breaks ties so pages are stable
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	start := f.Offset()
	if start > total {
		start = total
	}
	end := total
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}

	return all[start:end], total, nil
}

func (r *RegistrationsRepo) UpdateStatus(_ context.Context, id string, status registration.Status) (registration.Registration, error) {
	if !status.IsValid() {
		return registration.Registration{}, registration.ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.items[id]
	if !ok {
		return registration.Registration{}, registration.ErrNotFound
	}

	reg.Status = status
	reg.UpdatedAt = time.Now().UTC()
	r.items[id] = reg

	return reg, nil
}

func (r *RegistrationsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return registration.ErrNotFound
	}
	delete(r.items, id)

	return nil
}

func (r *RegistrationsRepo) Stats(_ context.Context) (registration.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := registration.Stats{
		ByStatus:   map[registration.Status]int{},
		ByCategory: map[string]int{},
	}

	for _, reg := range r.items {
		st.Total++
		st.TotalPlayers += reg.TeamSize
		st.ByStatus[reg.Status]++
		st.ByCategory[reg.Category]++
	}

	return st, nil
}
