// Command seed loads an order history into a profile's store. The input is
// either the raw cafeteria_orders array or a browser localStorage export
// object that carries it as a string value.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kiwari-pos/cafeteria/internal/enum"
	"github.com/kiwari-pos/cafeteria/internal/order"
	"github.com/kiwari-pos/cafeteria/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// exportKey is the localStorage key the browser client wrote orders under.
const exportKey = "cafeteria_orders"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	_ = godotenv.Load()

	// CLI flags
	file := flag.String("file", "", "Path to the exported orders JSON")
	profile := flag.String("profile", "", "Target profile ID (uuid)")
	driver := flag.String("driver", "", "Storage driver: memory, file, redis, postgres")
	merge := flag.Bool("merge", false, "Keep existing orders and put imported ones in front")
	flag.Parse()

	// Fall back to environment variables
	if *file == "" {
		*file = os.Getenv("SEED_FILE")
	}
	if *profile == "" {
		*profile = os.Getenv("SEED_PROFILE")
	}
	if *driver == "" {
		*driver = os.Getenv("STORAGE_DRIVER")
	}

	// Fall back to defaults
	if *driver == "" {
		*driver = enum.StorageDriverFile
	}
	if *file == "" {
		log.Fatal().Msg("no input: pass -file or set SEED_FILE")
	}
	profileID, err := uuid.Parse(*profile)
	if err != nil {
		log.Fatal().Err(err).Str("profile", *profile).Msg("invalid profile id")
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("read input")
	}
	imported, err := parseExport(raw)
	if err != nil {
		log.Fatal().Err(err).Msg("parse input")
	}

	ctx := context.Background()
	backend, closeStorage, err := storage.Open(ctx, *driver, storage.Options{
		DataDir:     envOr("DATA_DIR", "./data"),
		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", *driver).Msg("open storage")
	}
	defer closeStorage()

	store := order.NewStores(backend).ForProfile(profileID)
	if *merge {
		existing, err := store.ReadAll(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("read existing orders")
		}
		imported = mergeOrders(imported, existing)
	}

	if err := store.Replace(ctx, imported); err != nil {
		log.Fatal().Err(err).Msg("write orders")
	}

	log.Info().
		Str("profile", profileID.String()).
		Str("driver", *driver).
		Int("orders", len(imported)).
		Msg("seed completed")
}

// parseExport accepts a JSON array of orders, or an object holding the array
// (or its JSON-encoded string) under cafeteria_orders. Statuses are
// normalized the same way the store does on read.
func parseExport(raw []byte) ([]order.Order, error) {
	var orders []order.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		var export map[string]json.RawMessage
		if err := json.Unmarshal(raw, &export); err != nil {
			return nil, fmt.Errorf("input is neither an order list nor an export object: %w", err)
		}
		value, ok := export[exportKey]
		if !ok {
			return nil, fmt.Errorf("export has no %q key", exportKey)
		}
		// localStorage values are strings holding JSON.
		var encoded string
		if json.Unmarshal(value, &encoded) == nil {
			value = json.RawMessage(encoded)
		}
		if err := json.Unmarshal(value, &orders); err != nil {
			return nil, fmt.Errorf("decode %s: %w", exportKey, err)
		}
	}

	out := make([]order.Order, 0, len(orders))
	for _, o := range orders {
		if o.ID == "" {
			continue
		}
		o.Status = o.Status.Normalize()
		if o.Items == nil {
			o.Items = []order.LineItem{}
		}
		out = append(out, o)
	}
	return out, nil
}

// mergeOrders puts imported orders in front of existing ones. An existing
// order with the same ID is replaced by the imported copy.
func mergeOrders(imported, existing []order.Order) []order.Order {
	seen := make(map[string]bool, len(imported))
	for _, o := range imported {
		seen[o.ID] = true
	}
	merged := append([]order.Order{}, imported...)
	for _, o := range existing {
		if !seen[o.ID] {
			merged = append(merged, o)
		}
	}
	return merged
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
