// Command merge-contacts reconciles the Salesforce Contacts and Leads
// exports with the Marketing Cloud subscriber export, producing the
// deduplicated, tagged contact CSV consumed by upload-contacts.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/ignite/contact-sync/internal/config"
	"github.com/ignite/contact-sync/internal/crm"
	"github.com/ignite/contact-sync/internal/source"
)

func main() {
	cfg, err := config.LoadFromEnv(configPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx := context.Background()
	fetch := source.FetchConfig{Region: cfg.Sources.AWSRegion, Profile: cfg.Sources.AWSProfile}

	fmt.Println("============================================================")
	fmt.Println("CRM Contact Merger")
	fmt.Println("============================================================")

	// Step 1: Marketing Cloud subscriber status. The export is
	// supplementary: a missing file degrades to an empty map.
	fmt.Println("\n1. Loading Marketing Cloud unsubscribe data...")
	statuses := loadStatuses(ctx, fetch, cfg.Sources.MarketingCloudFile)
	fmt.Printf("   Loaded status for %d emails\n", len(statuses))
	printStatusCounts(statuses)

	merger := crm.NewMerger(statuses)

	// Step 2: Contacts. Primary data; a missing file is fatal.
	fmt.Println("\n2. Parsing Salesforce Contacts...")
	loadExport(ctx, fetch, cfg.Sources.ContactsFile, merger.LoadContacts)
	fmt.Printf("   Loaded %d contacts\n", merger.Stats().Contacts)

	// Step 3: Leads, merged against the contacts already parsed.
	fmt.Println("\n3. Parsing Salesforce Leads...")
	loadExport(ctx, fetch, cfg.Sources.LeadsFile, merger.LoadLeads)
	stats := merger.Stats()
	fmt.Printf("   Merged %d leads into existing contacts\n", stats.MergedLeads)
	fmt.Printf("   Loaded %d unique leads\n", stats.Leads)

	// Step 4: Serialize the unified set.
	fmt.Println("\n4. Writing output file...")
	records := merger.Records()
	total, err := crm.WriteExport(cfg.Merge.OutputFile, records, cfg.Client.ID)
	if err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	fmt.Printf("   Wrote %d records to %s\n", total, cfg.Merge.OutputFile)

	fmt.Println("\n============================================================")
	fmt.Println("SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Total contacts:     %d\n", stats.Contacts)
	fmt.Printf("Total leads:        %d\n", stats.Leads)
	fmt.Printf("Total records:      %d\n", total)
	fmt.Printf("Unsubscribed/Held:  %d\n", stats.Unsubscribed)
	fmt.Printf("Active/Sendable:    %d\n", total-stats.Unsubscribed)
	fmt.Printf("\nOutput file: %s\n", cfg.Merge.OutputFile)
}

func loadStatuses(ctx context.Context, fetch source.FetchConfig, path string) crm.StatusMap {
	r, err := source.OpenLatin1CSV(ctx, fetch, path)
	if err != nil {
		fmt.Printf("   Warning: Marketing Cloud file not available: %v\n", err)
		return crm.StatusMap{}
	}
	defer r.Close()

	statuses, err := crm.LoadStatuses(r)
	if err != nil {
		fmt.Printf("   Warning: Marketing Cloud file unreadable: %v\n", err)
		return crm.StatusMap{}
	}
	return statuses
}

func loadExport(ctx context.Context, fetch source.FetchConfig, path string, load func(*source.Reader) error) {
	r, err := source.OpenLatin1CSV(ctx, fetch, path)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", path, err)
	}
	defer r.Close()

	if err := load(r); err != nil {
		log.Fatalf("Failed to parse %s: %v", path, err)
	}
}

func printStatusCounts(statuses crm.StatusMap) {
	counts := statuses.Counts()
	names := make([]string, 0, len(counts))
	for status := range counts {
		names = append(names, string(status))
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("   - %s: %d\n", name, counts[crm.Status(name)])
	}
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config/config.yaml"
}
