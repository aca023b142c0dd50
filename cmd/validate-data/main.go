// Command validate-data checks the city datasets and land boundary.
//
// Usage:
//
//	go run ./cmd/validate-data [-data ./cityfill-data]
//
// Files in the data directory take precedence over the embedded copies, so
// refreshed data can be checked before it is committed.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/andreiashu/cityfill"
	"github.com/andreiashu/cityfill/internal/logger"
)

func main() {
	_ = godotenv.Load(".env")
	logger.Setup()

	dataDir := os.Getenv("CITYFILL_DATA_DIR")
	if dataDir == "" {
		dataDir = "./cityfill-data"
	}
	flag.StringVar(&dataDir, "data", dataDir, "directory overriding the embedded data")
	flag.Parse()

	fmt.Println("Validating cityfill data...")
	if err := cityfill.ValidateData(dataDir, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Data is valid.")
}
