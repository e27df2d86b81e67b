package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"tripmind/backend/internal/graph"
	"tripmind/backend/pkg/config"
	"tripmind/backend/pkg/logger"
	"go.uber.org/zap"
)

// Seeds a demo user through the full contextual write path: an explicit
// location first, then a follow-up delta that inherits it, then both read
// projections printed for inspection.
func main() {
	userID := flag.String("user-id", "user123", "User ID to seed")
	location := flag.String("location", "Delhi", "Initial location")
	flag.Parse()

	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Seeding preference graph...", zap.String("user_id", *userID))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}

	store := graph.NewStore(driver)
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error("Failed to close store", zap.Error(err))
		}
	}()

	high := "high"
	moderate := "moderate"

	if err := store.SaveUserDataWithContext(ctx, *userID, *location, []graph.PreferenceUpdate{
		{Type: "food", Intensity: &high},
	}); err != nil {
		log.Fatal("Failed to save initial preferences", zap.Error(err))
	}

	// No location here: inherited from the write above
	if err := store.SaveUserDataWithContext(ctx, *userID, "", []graph.PreferenceUpdate{
		{Type: "relaxation", Intensity: &moderate},
	}); err != nil {
		log.Fatal("Failed to save follow-up preferences", zap.Error(err))
	}

	contextual, err := store.GetContextualData(ctx, *userID)
	if err != nil {
		log.Fatal("Failed to fetch contextual data", zap.Error(err))
	}
	printJSON("Contextual data", contextual)

	snapshot, err := store.GetUserData(ctx, *userID)
	if err != nil {
		log.Fatal("Failed to fetch user data", zap.Error(err))
	}
	printJSON("Flat snapshot", snapshot)

	log.Info("Seeding complete")
}

func printJSON(label string, v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: failed to render: %v\n", label, err)
		return
	}
	fmt.Printf("%s:\n%s\n", label, out)
}
