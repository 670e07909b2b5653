// Prints a random hex key suitable for the SECRET_KEY setting.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

// 32 bytes of entropy, plenty for the HS256 family
const secretKeyLen = 32

func main() {
	key := make([]byte, secretKeyLen)

	if _, err := rand.Read(key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate secret key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(key))
}
