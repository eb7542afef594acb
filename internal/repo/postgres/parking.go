package postgres

import (
	"context"

	"github.com/geocoder89/parkinghub/internal/domain/parking"
	"github.com/geocoder89/parkinghub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ParkingRepo forwards the parking reference tables as-is.
type ParkingRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewParkingRepo(pool *pgxpool.Pool, prom *observability.Prom) *ParkingRepo {
	return &ParkingRepo{pool: pool, prom: prom}
}

func listAll[T any](ctx context.Context, r *ParkingRepo, op, query string) ([]T, error) {
	var out []T

	err := r.prom.ObserveDB(op, func() error {
		rows, err := r.pool.Query(ctx, query)
		if err != nil {
			return err
		}

		out, err = pgx.CollectRows(rows, pgx.RowToStructByPos[T])
		return err
	})

	if err != nil {
		return nil, err
	}

	if out == nil {
		out = make([]T, 0)
	}

	return out, nil
}

func (r *ParkingRepo) ListDzongkhags(ctx context.Context) ([]parking.Dzongkhag, error) {
	return listAll[parking.Dzongkhag](ctx, r, "parking.list_dzongkhags",
		`SELECT dzongkhag_id, dzongkhag_name FROM dzongkhag ORDER BY dzongkhag_id`)
}

func (r *ParkingRepo) ListAreas(ctx context.Context) ([]parking.Area, error) {
	return listAll[parking.Area](ctx, r, "parking.list_areas",
		`SELECT parkingarea_id, parking_location, dzongkhag_id FROM parking_area ORDER BY parkingarea_id`)
}

func (r *ParkingRepo) ListDetails(ctx context.Context) ([]parking.Detail, error) {
	return listAll[parking.Detail](ctx, r, "parking.list_details",
		`SELECT parking_detail_id, parkingarea_id, total_slots, available_slots, fee_per_hour::float8
		FROM parking_detail ORDER BY parking_detail_id`)
}

func (r *ParkingRepo) ListSlots(ctx context.Context) ([]parking.Slot, error) {
	return listAll[parking.Slot](ctx, r, "parking.list_slots",
		`SELECT slot_id, parkingarea_id, slot_number, is_occupied FROM parking_slots ORDER BY slot_id`)
}

func (r *ParkingRepo) CreateArea(ctx context.Context, req parking.CreateAreaRequest) (parking.Area, error) {
	area := parking.Area{ID: req.ID, Location: req.Location, DzongkhagID: req.DzongkhagID}

	err := r.prom.ObserveDB("parking.create_area", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO parking_area (parkingarea_id, parking_location, dzongkhag_id) VALUES ($1, $2, $3)`,
			area.ID, area.Location, area.DzongkhagID,
		)
		return err
	})

	switch {
	case err == nil:
		return area, nil
	case isConstraintViolation(err, codeUniqueViolation, "parking_area_pkey"):
		return parking.Area{}, parking.ErrDuplicateArea
	case isConstraintViolation(err, codeForeignKeyViolation, "parking_area_dzongkhag_id_fkey"):
		return parking.Area{}, parking.ErrUnknownDzongkhag
	default:
		return parking.Area{}, err
	}
}
