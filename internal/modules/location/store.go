// README: Location store backed by PostgreSQL with a unique address tuple.
package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"codrive/internal/infra"
	"codrive/internal/types"
)

type Store struct {
	db infra.DB
}

func NewStore(db infra.DB) *Store {
	return &Store{db: db}
}

const locationColumns = `id, country, postal_code, city, street, house_number, lat, lng, created_at`

func scanLocation(row pgx.Row) (*Location, error) {
	var l Location
	err := row.Scan(
		&l.ID, &l.Address.Country, &l.Address.PostalCode, &l.Address.City,
		&l.Address.Street, &l.Address.HouseNumber, &l.Point.Lat, &l.Point.Lng, &l.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Location, error) {
	row := infra.Conn(ctx, s.db).QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, string(id))
	l, err := scanLocation(row)
	if err != nil {
		return nil, fmt.Errorf("location.Store.Get: %w", err)
	}
	return l, nil
}

func (s *Store) FindByAddress(ctx context.Context, a Address) (*Location, error) {
	row := infra.Conn(ctx, s.db).QueryRow(ctx, `
		SELECT `+locationColumns+`
		FROM locations
		WHERE country = @country AND postal_code = @postal_code AND city = @city
		  AND street = @street AND house_number = @house_number`,
		addressArgs(a),
	)
	l, err := scanLocation(row)
	if err != nil {
		return nil, fmt.Errorf("location.Store.FindByAddress: %w", err)
	}
	return l, nil
}

// Insert returns the stored row; when the address already exists the existing row wins.
func (s *Store) Insert(ctx context.Context, l *Location) (*Location, error) {
	args := addressArgs(l.Address)
	args["id"] = string(l.ID)
	args["lat"] = l.Point.Lat
	args["lng"] = l.Point.Lng
	args["created_at"] = l.CreatedAt

	row := infra.Conn(ctx, s.db).QueryRow(ctx, `
		INSERT INTO locations (id, country, postal_code, city, street, house_number, lat, lng, created_at)
		VALUES (@id, @country, @postal_code, @city, @street, @house_number, @lat, @lng, @created_at)
		ON CONFLICT (country, postal_code, city, street, house_number)
		DO UPDATE SET country = EXCLUDED.country
		RETURNING `+locationColumns,
		args,
	)
	out, err := scanLocation(row)
	if err != nil {
		return nil, fmt.Errorf("location.Store.Insert: %w", err)
	}
	return out, nil
}

func addressArgs(a Address) pgx.NamedArgs {
	return pgx.NamedArgs{
		"country":      a.Country,
		"postal_code":  a.PostalCode,
		"city":         a.City,
		"street":       a.Street,
		"house_number": a.HouseNumber,
	}
}
