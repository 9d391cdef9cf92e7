// Command token mints bearer tokens for the API's protected routes using the
// configured JWT secret.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/noah-isme/ra-lab-allocator/internal/models"
	"github.com/noah-isme/ra-lab-allocator/internal/service"
	"github.com/noah-isme/ra-lab-allocator/pkg/config"
)

func main() {
	var (
		userID   string
		role     string
		email    string
		fullName string
	)
	pflag.StringVar(&userID, "user", "", "subject user id")
	pflag.StringVar(&role, "role", string(models.RoleCoordinator), "ADMIN, COORDINATOR or VIEWER")
	pflag.StringVar(&email, "email", "", "email claim")
	pflag.StringVar(&fullName, "name", "", "full name claim")
	pflag.Parse()

	if userID == "" {
		log.Fatal("--user is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	auth := service.NewAuthService(service.AuthConfig{
		AccessTokenSecret: cfg.Auth.Secret,
		AccessTokenExpiry: cfg.Auth.TokenTTL,
		Issuer:            cfg.Auth.Issuer,
	})
	token, expiresAt, err := auth.IssueToken(userID, models.UserRole(strings.ToUpper(role)), email, fullName)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Println(token)
}
