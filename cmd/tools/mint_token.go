package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"pairchat/auth"
	"pairchat/domain"
)

// Mints a local identity token so a session can be started without the
// real provider. Development only.
func main() {
	accountID := flag.String("id", uuid.NewString(), "Account id (defaults to a fresh one)")
	name := flag.String("name", "", "Display name (required)")
	avatar := flag.String("avatar", "", "Avatar URL")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	account := domain.Account{
		ID:          *accountID,
		DisplayName: *name,
		AvatarURL:   *avatar,
	}
	if err := auth.ValidateAccount(account); err != nil {
		log.Fatal("Invalid account: ", err)
	}

	token, err := auth.MintIdentityToken(account, *ttl)
	if err != nil {
		log.Fatal("Minting failed: ", err)
	}

	fmt.Printf("IDENTITY_TOKEN=%s\n", token)
}
