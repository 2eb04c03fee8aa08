package main

import (
	"os"

	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/bootstrap"
)

func main() {
	os.Exit(bootstrap.Run())
}
