// Command conformcheck validates a raw model response against a schema
// definition without calling any provider. It reports which extraction
// strategy fired, the validation outcome, and optionally the repair
// prompt that a live loop would send next.
//
// Usage:
//
//	conformcheck -schema work_item.yaml -input response.txt
//	cat response.txt | conformcheck -schema work_item.yaml -show-repair -prompt "Produce the work item as JSON."
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ahrav/go-conform/infrastructure/extract"
	"github.com/ahrav/go-conform/infrastructure/repair"
	"github.com/ahrav/go-conform/infrastructure/schema"
	"github.com/ahrav/go-conform/internal/domain"
)

func main() {
	var (
		schemaPath = flag.String("schema", "", "Path to the YAML schema definition (required)")
		inputPath  = flag.String("input", "-", "Path to the raw response file, or - for stdin")
		prompt     = flag.String("prompt", "", "Original prompt, used when printing the repair prompt")
		showRepair = flag.Bool("show-repair", false, "Print the repair prompt a loop would send next")
	)
	flag.Parse()

	if *schemaPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	s, err := schema.LoadDefinitionFile(*schemaPath)
	if err != nil {
		log.Fatalf("Failed to load schema: %v", err)
	}

	adapter, err := schema.NewAdapter(s)
	if err != nil {
		log.Fatalf("Failed to build validator: %v", err)
	}

	raw, err := readInput(*inputPath)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	value, strategy, ok := extract.JSONWithStrategy(raw)
	fmt.Printf("Extraction strategy: %s\n", strategy)
	if !ok {
		fmt.Println("Result: no structured content found")
		if *showRepair {
			errs := []domain.FieldError{{Path: "$", Message: "no parseable structured content in the response"}}
			printRepairPrompt(*prompt, errs, adapter)
		}
		os.Exit(1)
	}

	outcome := adapter.Validate(value)
	if outcome.Valid {
		fmt.Println("Result: valid")
		return
	}

	fmt.Printf("Result: invalid (%d errors)\n", len(outcome.Errors))
	for _, fieldErr := range outcome.Errors {
		fmt.Printf("  - %s\n", fieldErr.Error())
	}

	if *showRepair {
		printRepairPrompt(*prompt, outcome.Errors, adapter)
	}
	os.Exit(1)
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func printRepairPrompt(prompt string, errs []domain.FieldError, adapter *schema.Adapter) {
	fmt.Println("\nRepair prompt:")
	fmt.Println(repair.BuildPrompt(prompt, errs, adapter))
}
