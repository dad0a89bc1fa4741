// cmd/hashpw/main.go
// Standalone tool that hashes an operator password for OPERATOR_PASSWORD_HASH.
// There is no registration endpoint in this service: the single operator
// credential pair is provisioned out of band by setting environment
// variables, and this is the tool that produces the hash half of that pair.

package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := bcrypt.DefaultCost
	if len(os.Args) > 1 {
		fmt.Sscanf(os.Args[1], "%d", &cost)
	}

	password, err := readPassword()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read password: %v\n", err)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(hash))
}

// readPassword reads a single line from stdin. Pipe the password in
// (e.g. `echo "$PW" | hashpw`) rather than typing it at an echoing
// terminal.
func readPassword() (string, error) {
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return "", scanner.Err()
	}
	return scanner.Text(), nil
}
