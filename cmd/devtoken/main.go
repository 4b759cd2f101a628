// Command devtoken mints an access token for local testing.
//
//	go run ./cmd/devtoken -employee <id> -company <id> -role manager
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/absence-ledger/internal/config"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/user"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/jwt"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/validator"
)

func main() {
	employeeID := flag.String("employee", "", "employee id (required)")
	companyID := flag.String("company", "", "company id (required)")
	userID := flag.String("user", "", "user id, defaults to the employee id")
	role := flag.String("role", string(user.RoleEmployee), "owner, manager or employee")
	flag.Parse()

	if *employeeID == "" || *companyID == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *userID == "" {
		*userID = *employeeID
	}
	if !validator.IsValidUUID(*employeeID) || !validator.IsValidUUID(*companyID) {
		fmt.Fprintln(os.Stderr, "employee and company must be UUIDv7 ids")
		os.Exit(2)
	}
	if !user.Role(*role).Valid() {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).
		GenerateAccessToken(*userID, *employeeID, *companyID, user.Role(*role))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "expires at %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
	fmt.Println(token)
}
