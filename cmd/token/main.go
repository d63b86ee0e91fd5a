package main

import (
	"chirp-hub/auth"
	"chirp-hub/domain/chat"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
}

// token issues a JWT for a user id, signed with the hub secret.
func main() {
	userID := flag.String("user", "", "User id carried by the token")
	duration := flag.Duration("duration", 0, "Token lifetime, AUTH_TOKEN_DURATION when zero")
	flag.Parse()

	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatal("Config error: ", err)
	}
	if *userID == "" {
		log.Fatal("-user is required")
	}
	if *duration > 0 {
		config.AuthTokenDuration = *duration
	}

	token, err := auth.NewIssuer(config.JWTSecret, config.AuthTokenDuration).GenerateToken(chat.UserID(*userID))
	if err != nil {
		log.Fatal("Unable to sign token: ", err)
	}
	fmt.Println(token)
}
