// Command token issues a bearer token signed with JWT_SECRET, mainly to
// obtain admin credentials for the administrative endpoints.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/chrisdamba/boatride/internal/auth"
	"github.com/google/uuid"
)

func main() {
	var role, subject string
	var ttl time.Duration

	flag.StringVar(&role, "role", models.RoleAdmin, "token role (admin or driver)")
	flag.StringVar(&subject, "sub", "", "subject id; a random id is used when empty")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET must be set")
		os.Exit(1)
	}
	if role != models.RoleAdmin && role != models.RoleDriver {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", role)
		os.Exit(1)
	}

	id := uuid.New()
	if subject != "" {
		parsed, err := uuid.Parse(subject)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid subject: %v\n", err)
			os.Exit(1)
		}
		id = parsed
	}

	token, err := auth.NewTokenManager(secret, ttl).IssueToken(id, role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
