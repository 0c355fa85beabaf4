package main

import (
	"fmt"
	"log"
	"os"

	"github.com/crewhq/backend/pkg/auth"
	"github.com/crewhq/backend/pkg/constants"
)

// mktoken mints a dev JWT for local testing. Tokens in production come from
// the identity service.
func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: mktoken <user_id> <role> [name] [email]")
	}
	userID := os.Args[1]
	role := os.Args[2]

	if !validRole(role) {
		log.Fatalf("Unknown role %q", role)
	}

	name := "Dev User"
	if len(os.Args) > 3 {
		name = os.Args[3]
	}
	email := "dev@example.com"
	if len(os.Args) > 4 {
		email = os.Args[4]
	}

	token, err := auth.GenerateToken(auth.UserSession{
		ID:    userID,
		Name:  name,
		Email: email,
		Role:  role,
	})
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Println(token)
}

func validRole(role string) bool {
	switch role {
	case constants.RoleSuperAdmin, constants.RoleHRManager, constants.RoleSalesManager,
		constants.RoleSalesRep, constants.RoleEmployee:
		return true
	}
	return false
}
