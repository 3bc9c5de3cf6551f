package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scooplog/scooplog/internal/models"
	"github.com/scooplog/scooplog/internal/repositories/postgres"
)

type stores struct {
	pool    *pgxpool.Pool
	flavors *postgres.FlavorRepository
	menus   *postgres.MenuRepository
}

func openStores(ctx context.Context, cfg *models.Config) (*stores, error) {
	pool, err := pgxpool.New(ctx, cfg.Database.ConnString())
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &stores{
		pool:    pool,
		flavors: postgres.NewFlavorRepository(pool),
		menus:   postgres.NewMenuRepository(pool),
	}, nil
}

func (s *stores) Close() {
	s.pool.Close()
}
