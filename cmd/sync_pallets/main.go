// sync_pallets importa el archivo de pallets producidos que exporta el sistema de planta
// (CSV separado por ';', ISO-8859-1) y lo sincroniza con el registro de pallets.
//
// Uso: go run ./cmd/sync_pallets [-encoding latin1|utf8] [-batch 500] ruta/produccion.csv
// Los pallets nuevos se crean como available; los existentes solo actualizan atributos de
// producción (su estado no cambia).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/application/logistics"
	"github.com/jhoicas/Despachos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Despachos-api/pkg/config"
	"github.com/jhoicas/Despachos-api/pkg/logger"
)

func main() {
	encoding := flag.String("encoding", "latin1", "codificación del archivo: latin1 | utf8")
	batch := flag.Int("batch", 500, "pallets por transacción")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: sync_pallets [-encoding latin1|utf8] [-batch N] archivo.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("sync_pallets")

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir archivo")
	}
	defer f.Close()

	var input io.Reader = f
	if strings.EqualFold(*encoding, "latin1") || strings.EqualFold(*encoding, "ISO-8859-1") {
		input = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	pallets, err := ParseFeed(input)
	if err != nil {
		log.Fatal().Err(err).Msg("leer archivo de producción")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	registry := logistics.NewRegistryUseCase(postgres.NewTxRunner(pool), postgres.NewPalletRepository(pool), log)
	total := dto.SyncResult{}
	for _, chunk := range chunks(pallets, *batch) {
		res, err := registry.SyncProduced(ctx, chunk)
		if err != nil {
			log.Fatal().Err(err).Int("created", total.Created).Int("updated", total.Updated).Msg("sincronizar lote")
		}
		total.Created += res.Created
		total.Updated += res.Updated
	}
	log.Info().Int("read", len(pallets)).Int("created", total.Created).Int("updated", total.Updated).Msg("sincronización completada")
}

func chunks(in []dto.ProducedPalletInput, size int) [][]dto.ProducedPalletInput {
	if size <= 0 {
		size = len(in)
	}
	var out [][]dto.ProducedPalletInput
	for len(in) > 0 {
		n := min(size, len(in))
		out = append(out, in[:n])
		in = in[n:]
	}
	return out
}
