//go:build !race

package auth

func passwordHashCost() int {
	// Stays above the library default; raising it only affects newly
	// hashed passwords.
	return 12
}
