// devtoken emite un JWT de desarrollo con user_id y business_id para probar la API.
// Con --seed registra además el negocio en PostgreSQL (STORAGE_DRIVER=postgres).
//
// Uso: go run ./cmd/devtoken --business <uuid> --user <uuid> [--name "Mi tienda"] [--seed]
// Sin ids genera UUIDs nuevos. Lee JWT_SECRET, JWT_ISSUER y DB_* del entorno o .env.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/infrastructure/postgres"
	"github.com/jhoicas/kardex-api/pkg/config"
	"github.com/jhoicas/kardex-api/pkg/jwt"
)

func main() {
	businessID := pflag.String("business", "", "ID del negocio (UUID)")
	userID := pflag.String("user", "", "ID del usuario (UUID)")
	name := pflag.String("name", "Negocio de desarrollo", "nombre del negocio al sembrar")
	minutes := pflag.Int("minutes", 0, "vigencia en minutos (0 = JWT_EXPIRATION_MINUTES)")
	seed := pflag.Bool("seed", false, "registrar el negocio en PostgreSQL")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET es obligatorio")
		os.Exit(1)
	}
	if *businessID == "" {
		*businessID = uuid.NewString()
	}
	if *userID == "" {
		*userID = uuid.NewString()
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}

	if *seed {
		if err := seedBusiness(cfg.DB, *businessID, *name); err != nil {
			fmt.Fprintf(os.Stderr, "Sembrar negocio: %v\n", err)
			os.Exit(1)
		}
	}

	token, err := jwt.Generate(cfg.JWT.Secret, *userID, *businessID, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "business_id=%s user_id=%s exp=%dm\n", *businessID, *userID, exp)
	fmt.Println(token)
}

func seedBusiness(dbCfg config.DBConfig, id, name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	return postgres.NewBusinessRepository(pool).Ensure(ctx, &entity.Business{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	})
}
