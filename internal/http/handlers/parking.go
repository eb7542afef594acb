package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/parkinghub/internal/cache"
	"github.com/geocoder89/parkinghub/internal/domain/parking"
	"github.com/gin-gonic/gin"
)

type ParkingStore interface {
	ListDzongkhags(ctx context.Context) ([]parking.Dzongkhag, error)
	ListAreas(ctx context.Context) ([]parking.Area, error)
	ListDetails(ctx context.Context) ([]parking.Detail, error)
	ListSlots(ctx context.Context) ([]parking.Slot, error)
	CreateArea(ctx context.Context, req parking.CreateAreaRequest) (parking.Area, error)
}

// listing cache keys
const (
	keyDzongkhags = "dzongkhags"
	keyAreas      = "parking_areas"
	keyDetails    = "parking_details"
	keySlots      = "parking_slots"
)

type ParkingHandler struct {
	store   ParkingStore
	cache   cache.Cache
	observe func(key, result string)
	timeout time.Duration
}

// NewParkingHandler serves the parking listings through c. observe may be nil.
func NewParkingHandler(store ParkingStore, c cache.Cache, observe func(key, result string), timeout time.Duration) *ParkingHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &ParkingHandler{
		store:   store,
		cache:   c,
		observe: observe,
		timeout: timeout,
	}
}

func listing[T any](h *ParkingHandler, ctx *gin.Context, key, failMsg string, load func(context.Context) ([]T, error)) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	items, err := cache.Fetch(cctx, h.cache, key, h.observe, load)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "parking listing failed", "key", key, "err", err)
		RespondInternal(ctx, failMsg)
		return
	}

	if items == nil {
		items = []T{}
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

func (h *ParkingHandler) Dzongkhags(ctx *gin.Context) {
	listing(h, ctx, keyDzongkhags, "Failed to fetch dzongkhag data", h.store.ListDzongkhags)
}

func (h *ParkingHandler) Areas(ctx *gin.Context) {
	listing(h, ctx, keyAreas, "Failed to fetch parking area data", h.store.ListAreas)
}

func (h *ParkingHandler) Details(ctx *gin.Context) {
	listing(h, ctx, keyDetails, "Failed to fetch parking detail data", h.store.ListDetails)
}

func (h *ParkingHandler) Slots(ctx *gin.Context) {
	listing(h, ctx, keySlots, "Failed to fetch parking slot data", h.store.ListSlots)
}

func (h *ParkingHandler) AddData(ctx *gin.Context) {
	var req parking.CreateAreaRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	_, err := h.store.CreateArea(cctx, req)

	if err != nil {
		switch {
		case errors.Is(err, parking.ErrUnknownDzongkhag):
			RespondBadRequest(ctx, "Dzongkhag does not exist", nil)
		case errors.Is(err, parking.ErrDuplicateArea):
			RespondError(ctx, http.StatusBadRequest, "conflict", "Parking area already exists", nil)
		default:
			slog.Default().ErrorContext(ctx.Request.Context(), "add parking area failed", "err", err)
			RespondInternal(ctx, "Failed to add data to the database")
		}
		return
	}

	if err := h.cache.Delete(cctx, keyAreas); err != nil {
		slog.Default().WarnContext(ctx.Request.Context(), "cache invalidation failed", "key", keyAreas, "err", err)
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Data added successfully"})
}
