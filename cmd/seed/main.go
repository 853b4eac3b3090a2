// Package main implements a standalone seed script that populates the
// storefront catalog with sample products via direct SQL, for local
// development and demos.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FilipeCampos25/SiteClienteLucas/pkg/slug"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type seedProduct struct {
	name        string
	description string
	price       float64
}

var catalog = []seedProduct{
	{"Cantoneira de Alumínio 20mm", "Acabamento para quinas de parede, barra de 3m.", 18.90},
	{"Cantoneira de Alumínio 25mm", "Acabamento para quinas de parede, barra de 3m.", 22.50},
	{"Cantoneira de PVC Branca 25mm", "Proteção de quinas em PVC rígido, barra de 2,5m.", 9.80},
	{"Rodapé de Poliestireno 7cm Branco", "Rodapé liso, barra de 2,4m.", 32.00},
	{"Rodapé de Poliestireno 10cm Branco", "Rodapé com friso, barra de 2,4m.", 45.70},
	{"Perfil T de Alumínio 24mm", "Junção de pisos no mesmo nível, barra de 3m.", 27.30},
	{"Perfil de Arremate 10mm", "Arremate de piso laminado, barra de 2,1m.", 15.40},
	{"Roda Teto de Isopor 5cm", "Moldura de teto, barra de 2m.", 7.25},
	{"Fita Banda Larga Autocolante", "Fita de vedação para frestas, rolo de 10m.", 29.90},
	{"Cola de Montagem 400g", "Adesivo para fixação de rodapés e molduras.", 24.60},
}

func main() {
	truncate := flag.Bool("truncate", false, "remove existing products before seeding")
	flag.Parse()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("POSTGRES_USER", "storefront"),
		getEnv("POSTGRES_PASSWORD", "storefront_secret"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_DB", "storefront"),
		getEnv("POSTGRES_SSLMODE", "disable"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	if *truncate {
		if _, err := pool.Exec(ctx, "TRUNCATE products RESTART IDENTITY"); err != nil {
			log.Fatalf("truncate products: %v", err)
		}
		log.Println("existing products removed")
	}

	inserted := 0
	for _, p := range catalog {
		tag, err := pool.Exec(ctx, `
			INSERT INTO products (name, slug, description, price, active)
			VALUES ($1, $2, $3, $4, TRUE)
			ON CONFLICT (slug) DO NOTHING`,
			p.name, slug.Generate(p.name), p.description, p.price,
		)
		if err != nil {
			log.Fatalf("insert %q: %v", p.name, err)
		}
		inserted += int(tag.RowsAffected())
	}

	log.Printf("seed complete: %d of %d products inserted", inserted, len(catalog))
}
