// Command validatelevel validates level JSON files in a directory. It
// checks grid consistency, legend/tile validity, objective reachability,
// and energy budget consistency, printing a concise report per file and
// exiting non-zero if any are invalid.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dronelab/autodrone/internal/level"
)

func main() {
	levelsDir := flag.String("dir", "levels", "directory containing level JSON files")
	flag.Parse()

	files, err := filepath.Glob(filepath.Join(*levelsDir, "*.json"))
	if err != nil {
		fmt.Printf("error finding level files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".json")
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), name)

		lvl, err := level.LoadByName(*levelsDir, name)
		if err != nil {
			fmt.Printf("❌ INVALID\n  ❌ %v\n", err)
			allValid = false
			continue
		}

		if err := level.Validate(lvl); err != nil {
			fmt.Printf("❌ INVALID\n  ❌ %v\n", err)
			allValid = false
			continue
		}

		fmt.Println("✅ VALID")
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All levels are valid!")
	} else {
		fmt.Println("❌ Some levels have errors")
		os.Exit(1)
	}
}
