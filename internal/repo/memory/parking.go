package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/parkinghub/internal/domain/parking"
)

type ParkingRepo struct {
	mu         sync.RWMutex
	dzongkhags map[int]parking.Dzongkhag
	areas      map[int]parking.Area
	details    []parking.Detail
	slots      []parking.Slot
}

func NewParkingRepo(dzongkhags ...parking.Dzongkhag) *ParkingRepo {
	r := &ParkingRepo{
		dzongkhags: make(map[int]parking.Dzongkhag),
		areas:      make(map[int]parking.Area),
	}
	for _, d := range dzongkhags {
		r.dzongkhags[d.ID] = d
	}
	return r
}

func (r *ParkingRepo) ListDzongkhags(_ context.Context) ([]parking.Dzongkhag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]parking.Dzongkhag, 0, len(r.dzongkhags))
	for _, d := range r.dzongkhags {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ParkingRepo) ListAreas(_ context.Context) ([]parking.Area, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]parking.Area, 0, len(r.areas))
	for _, a := range r.areas {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ParkingRepo) ListDetails(_ context.Context) ([]parking.Detail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append(make([]parking.Detail, 0, len(r.details)), r.details...), nil
}

func (r *ParkingRepo) ListSlots(_ context.Context) ([]parking.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append(make([]parking.Slot, 0, len(r.slots)), r.slots...), nil
}

func (r *ParkingRepo) CreateArea(_ context.Context, req parking.CreateAreaRequest) (parking.Area, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.dzongkhags[req.DzongkhagID]; !ok {
		return parking.Area{}, parking.ErrUnknownDzongkhag
	}
	if _, ok := r.areas[req.ID]; ok {
		return parking.Area{}, parking.ErrDuplicateArea
	}

	a := parking.Area{ID: req.ID, Location: req.Location, DzongkhagID: req.DzongkhagID}
	r.areas[a.ID] = a
	return a, nil
}
