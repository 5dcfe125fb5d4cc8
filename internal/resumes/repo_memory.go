package resumes

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repo for tests and local development. It keeps
// the same shared-dimension behavior as Postgres: companies, schools, skills
// and locations are resolved by natural key and survive resume deletion.
type MemoryRepo struct {
	mu sync.Mutex

	byUser map[string]storedResume

	nextID    int64
	companies map[string]int64
	schools   map[string]int64
	skills    map[string]int64
	locations map[locationKey]int64
}

type locationKey struct {
	city    string
	country string
}

type storedResume struct {
	resume Resume
	parsed ParsedResume
}

var _ Repo = (*MemoryRepo)(nil)

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byUser:    make(map[string]storedResume),
		companies: make(map[string]int64),
		schools:   make(map[string]int64),
		skills:    make(map[string]int64),
		locations: make(map[locationKey]int64),
	}
}

func (r *MemoryRepo) Replace(ctx context.Context, rec NewResume) (Resume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, exp := range rec.Parsed.Experience {
		if exp.Company != "" {
			r.resolve(r.companies, exp.Company)
		}
	}
	kept := rec.Parsed.Education[:0:0]
	for _, edu := range rec.Parsed.Education {
		if edu.Institution == "" {
			continue
		}
		r.resolve(r.schools, edu.Institution)
		kept = append(kept, edu)
	}
	rec.Parsed.Education = kept
	for _, skill := range rec.Parsed.Skills {
		r.resolve(r.skills, skill)
	}
	if city, _ := splitCityState(rec.Parsed.Header.Address); city != "" {
		key := locationKey{city: city, country: "US"}
		if _, ok := r.locations[key]; !ok {
			r.nextID++
			r.locations[key] = r.nextID
		}
	}

	res := Resume{
		ID:         rec.ID,
		UserID:     rec.UserID,
		StorageKey: rec.StorageKey,
		FileName:   rec.FileName,
		Text:       rec.Text,
		CreatedAt:  rec.CreatedAt,
	}
	r.byUser[rec.UserID] = storedResume{resume: res, parsed: rec.Parsed}
	return res, nil
}

func (r *MemoryRepo) CurrentByUser(ctx context.Context, userID string) (Resume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byUser[userID]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return stored.resume, nil
}

func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byUser[userID]
	if !ok {
		return nil, nil
	}
	delete(r.byUser, userID)
	return []string{stored.resume.StorageKey}, nil
}

// ParsedByUser exposes the stored graph for test assertions.
func (r *MemoryRepo) ParsedByUser(userID string) (ParsedResume, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byUser[userID]
	return stored.parsed, ok
}

// SkillCount reports how many distinct skill rows exist across all users.
func (r *MemoryRepo) SkillCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.skills)
}

// CompanyCount reports how many distinct company rows exist.
func (r *MemoryRepo) CompanyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.companies)
}

func (r *MemoryRepo) resolve(dim map[string]int64, key string) int64 {
	if id, ok := dim[key]; ok {
		return id
	}
	r.nextID++
	dim[key] = r.nextID
	return r.nextID
}
