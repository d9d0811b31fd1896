// Command populate-tags re-derives the denormalized tag-frequency table for
// a tenant by paginating the contacts already in the hosted store.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ignite/contact-sync/internal/config"
	"github.com/ignite/contact-sync/internal/supabase"
	"github.com/ignite/contact-sync/internal/uploader"
)

func main() {
	cfg, err := config.LoadFromEnv(configPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateStore(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	fmt.Println("============================================================")
	fmt.Println("Populating Tags Table")
	fmt.Println("============================================================")

	store := supabase.NewClient(supabase.Config{
		BaseURL:    cfg.Supabase.URL,
		ServiceKey: cfg.Supabase.ServiceKey,
		Timeout:    cfg.Supabase.Timeout(),
	})
	populator := uploader.NewTagPopulator(store, cfg.Client.ID, cfg.Tags.PageSize, cfg.Tags.BatchSize)

	result, err := populator.Run(context.Background())
	if err != nil {
		log.Fatalf("Failed to populate tags table: %v", err)
	}

	fmt.Printf("\nTotal contacts:    %d\n", result.Contacts)
	fmt.Printf("Unique tags found: %d\n", result.UniqueTags)

	fmt.Println("\nTop tags by count:")
	for _, tag := range result.Top {
		fmt.Printf("  %s: %d\n", tag.Name, tag.Count)
	}

	fmt.Println("\nDone! Tags table populated.")
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config/config.yaml"
}
