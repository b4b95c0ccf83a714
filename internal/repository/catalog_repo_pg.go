package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juju/errors"

	"github.com/Domenick1991/domora/internal/domain"
)

type PGCatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) CatalogRepository {
	return &PGCatalogRepository{db: db}
}

const (
	packageColumns = `id, name, description, base_price, duration_minutes, service_type, features, best_for, max_size`
	addonColumns   = `id, name, description, price, service_type, duration_minutes`
)

func (r *PGCatalogRepository) ReplaceAll(ctx context.Context, packages []domain.ServicePackage, addons []domain.ServiceAddon) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Trace(err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM service_packages`); err != nil {
		return errors.Annotate(err, "clear packages")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM service_addons`); err != nil {
		return errors.Annotate(err, "clear addons")
	}

	batch := &pgx.Batch{}
	for _, p := range packages {
		features := p.Features
		if features == nil {
			features = []string{}
		}
		batch.Queue(`INSERT INTO service_packages (`+packageColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.ID, p.Name, p.Description, p.BasePrice, p.DurationMinutes, p.ServiceType, features, p.BestFor, p.MaxSize)
	}
	for _, a := range addons {
		batch.Queue(`INSERT INTO service_addons (`+addonColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ID, a.Name, a.Description, a.Price, a.ServiceType, a.DurationMinutes)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Annotate(err, "insert catalog")
	}
	return errors.Trace(tx.Commit(ctx))
}

func (r *PGCatalogRepository) ListPackages(ctx context.Context, st domain.ServiceType) ([]domain.ServicePackage, error) {
	rows, err := r.db.Query(ctx, `SELECT `+packageColumns+` FROM service_packages WHERE ($1 = '' OR service_type = $1) ORDER BY service_type, base_price`, string(st))
	if err != nil {
		return nil, errors.Annotate(err, "list packages")
	}
	defer rows.Close()

	packages := make([]domain.ServicePackage, 0)
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, errors.Trace(err)
		}
		packages = append(packages, *p)
	}
	return packages, errors.Trace(rows.Err())
}

func (r *PGCatalogRepository) ListAddons(ctx context.Context, st domain.ServiceType) ([]domain.ServiceAddon, error) {
	rows, err := r.db.Query(ctx, `SELECT `+addonColumns+` FROM service_addons WHERE ($1 = '' OR service_type = $1) ORDER BY service_type, price`, string(st))
	if err != nil {
		return nil, errors.Annotate(err, "list addons")
	}
	return collectAddons(rows)
}

func (r *PGCatalogRepository) GetPackage(ctx context.Context, id string) (*domain.ServicePackage, error) {
	row := r.db.QueryRow(ctx, `SELECT `+packageColumns+` FROM service_packages WHERE id=$1`, id)
	p, err := scanPackage(row)
	return p, wrapPG(err, "service package %q", id)
}

func (r *PGCatalogRepository) GetAddons(ctx context.Context, ids []string) ([]domain.ServiceAddon, error) {
	if len(ids) == 0 {
		return []domain.ServiceAddon{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+addonColumns+` FROM service_addons WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, errors.Annotate(err, "get addons")
	}
	return collectAddons(rows)
}

func collectAddons(rows pgx.Rows) ([]domain.ServiceAddon, error) {
	defer rows.Close()
	addons := make([]domain.ServiceAddon, 0)
	for rows.Next() {
		var a domain.ServiceAddon
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Price, &a.ServiceType, &a.DurationMinutes); err != nil {
			return nil, errors.Trace(err)
		}
		addons = append(addons, a)
	}
	return addons, errors.Trace(rows.Err())
}

func scanPackage(row rowScanner) (*domain.ServicePackage, error) {
	var p domain.ServicePackage
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.BasePrice, &p.DurationMinutes, &p.ServiceType, &p.Features, &p.BestFor, &p.MaxSize); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ CatalogRepository = (*PGCatalogRepository)(nil)
