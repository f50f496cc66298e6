// Command keygen creates the master encryption key file used by the safety
// store. Run it once before first start when the key should be provisioned
// out of band; the server otherwise creates one on boot.
package main

import (
	"flag"
	"fmt"
	"os"

	"aegis/pkg/secrets"
)

func main() {
	path := flag.String("out", "data/encryption.key", "path to write the key file")
	flag.Parse()

	if _, err := os.Stat(*path); err == nil {
		fmt.Fprintf(os.Stderr, "refusing to overwrite existing key file %s\n", *path)
		os.Exit(1)
	}

	if _, err := secrets.LoadOrCreateMasterKey(*path); err != nil {
		fmt.Fprintf(os.Stderr, "could not create key: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d-byte key to %s\n", secrets.MasterKeySize, *path)
}
