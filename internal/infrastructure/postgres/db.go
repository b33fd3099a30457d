package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/config"
)

// NewConnection cria a conexão com o PostgreSQL
func NewConnection(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao banco de dados: %w", err)
	}

	// Pool de conexões
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// Ping verifica a conexão com o banco
func Ping(ctx context.Context, db *sqlx.DB) error {
	return db.PingContext(ctx)
}
