// Command hash-generator prints bcrypt hashes for the passwords given as
// arguments, for seeding development databases with known credentials.
// With no arguments it hashes a fixed set of sample passwords.
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/drill-api/internal/service/auth"
)

func main() {
	passwords := os.Args[1:]
	if len(passwords) == 0 {
		passwords = []string{
			"testpassword123",
			"test@#$%^&*()",
			"this-is-a-very-long-password-that-tests-edge-cases-for-bcrypt-hashing-algorithm",
			"тест123",
		}
	}

	for _, password := range passwords {
		hash, err := auth.HashPassword(password, bcrypt.DefaultCost)
		if err != nil {
			fmt.Printf("Error generating hash for %s: %v\n", password, err)
			continue
		}
		fmt.Printf("Password: %s\nHash: %s\n\n", password, hash)
	}
}
