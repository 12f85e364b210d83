package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"group-chat/auth"
	"group-chat/domain"
	"group-chat/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

type toolConfig struct {
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
}

// Seeds user profiles and prints ready-to-use bearer tokens, so a live
// session can be exercised without the account surface.
func main() {
	count := flag.Int("count", 3, "number of users to create")
	password := flag.String("password", "Str0ngPassword+2026", "password for every seeded user")
	flag.Parse()

	_ = godotenv.Load()
	var config toolConfig
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	users, err := repositories.NewUserRepository(db)
	if err != nil {
		log.Fatalf("User repository: %v", err)
	}
	defer users.Close()

	color.New(color.BgBlack, color.FgGreen).Println("  ====== group-chat: seeding test users ======")

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Hashing failed: %v", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Username", "Token"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for i := 1; i <= *count; i++ {
		username := fmt.Sprintf("user%d", i)
		email := fmt.Sprintf("user%d@example.com", i)

		user, err := users.CreateUser(username, email, hash, domain.StatusSimple)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", username, err)
			continue
		}

		token, err := auth.GenerateToken(username, config.AuthTokenDuration)
		if err != nil {
			log.Fatalf("Token generation failed: %v", err)
		}

		table.Append([]string{strconv.FormatInt(user.ID, 10), user.Username, token})
	}

	table.Render()
	fmt.Println("\nConnect with: ws://localhost:<PORT>/ws/chat?token=<token>")
}
