// Command devtoken prints a signed bearer token for local testing of the API.
//
//	go run ./cmd/devtoken -user 7 -roles user,admin
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"eventhub/config"
	"eventhub/internal/adapters/auth"
)

func main() {
	userID := flag.Int64("user", 0, "user id placed in the token subject")
	email := flag.String("email", "", "optional e-mail claim")
	roles := flag.String("roles", "user", "comma separated role codes")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if *userID <= 0 {
		fmt.Fprintln(os.Stderr, "-user must be a positive id")
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(*userID, *email, strings.Split(*roles, ","), *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
