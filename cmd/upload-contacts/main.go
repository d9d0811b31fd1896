// Command upload-contacts pushes the merged contact CSV to the hosted store
// in idempotent batches, reporting a best-effort tally at the end.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ignite/contact-sync/internal/config"
	"github.com/ignite/contact-sync/internal/crm"
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
	fmt.Println("Contact Store Uploader")
	fmt.Println("============================================================")

	fmt.Printf("\n1. Loading contacts from %s...\n", cfg.Upload.InputFile)
	records, err := crm.ReadExport(cfg.Upload.InputFile)
	if err != nil {
		log.Fatalf("Failed to load merged contacts: %v", err)
	}
	fmt.Printf("   Loaded %d contacts\n", len(records))

	store := supabase.NewClient(supabase.Config{
		BaseURL:    cfg.Supabase.URL,
		ServiceKey: cfg.Supabase.ServiceKey,
		Timeout:    cfg.Supabase.Timeout(),
	})
	up := uploader.NewUploader(store, cfg.Upload.BatchSize, cfg.Upload.BatchDelay())

	totalBatches := (len(records) + cfg.Upload.BatchSize - 1) / cfg.Upload.BatchSize
	fmt.Printf("\n2. Uploading in %d batches of %d...\n", totalBatches, cfg.Upload.BatchSize)

	result := up.Run(context.Background(), records)

	fmt.Println("\n============================================================")
	fmt.Println("SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Successfully uploaded: %d\n", result.Uploaded)
	fmt.Printf("Failed:                %d\n", result.Failed)

	if len(result.Failures) > 0 {
		fmt.Println("\nFailed batches:")
		for _, f := range result.ReportedFailures() {
			fmt.Printf("  - Batch %d (%d records): %s\n", f.Batch, f.Records, f.Err)
		}
		if extra := len(result.Failures) - len(result.ReportedFailures()); extra > 0 {
			fmt.Printf("  ... and %d more\n", extra)
		}
	}

	fmt.Println("\nDone!")
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config/config.yaml"
}
