// Package main provides a CLI tool for generating and inspecting session
// assertions for the automatik portal. Tokens signed with the default key
// only work against servers running without JWT_SECRET.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"automatik/internal/guard"
	jwttoken "automatik/internal/jwt_token"
	"automatik/internal/platform/config"
	id "automatik/pkg/domain"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	sessionCmd := flag.NewFlagSet("session", flag.ExitOnError)
	decodeCmd := flag.NewFlagSet("decode", flag.ExitOnError)

	userID := sessionCmd.String("user-id", "1", "User ID (positive integer)")
	role := sessionCmd.String("role", "admin", "admin or tenant-member")
	tenantID := sessionCmd.String("tenant-id", "", "Tenant ID (optional)")
	ttl := sessionCmd.Duration("ttl", jwttoken.DefaultTTL, "Token time-to-live")
	secret := sessionCmd.String("secret", "", "Signing key (defaults to $JWT_SECRET, then the dev key)")
	sessionJSON := sessionCmd.Bool("json", false, "Output as JSON")

	decodeJSON := decodeCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "session":
		_ = sessionCmd.Parse(os.Args[2:])
		generateSessionToken(*userID, *role, *tenantID, *secret, *ttl, *sessionJSON)
	case "decode":
		_ = decodeCmd.Parse(os.Args[2:])
		if decodeCmd.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "decode expects exactly one token")
			os.Exit(1)
		}
		decodeToken(decodeCmd.Arg(0), *decodeJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate session tokens for the automatik portal

WARNING: Without -secret or JWT_SECRET, tokens are signed with the dev key.
         Only use them for local development and testing.

Usage:
  tokengen <command> [flags]

Commands:
  session   Sign a session assertion
  decode    Print the claims of a token without verifying it

Examples:
  # Admin session with defaults
  tokengen session

  # Member of tenant 2
  tokengen session -user-id 3 -role tenant-member -tenant-id 2

  # Inspect a token as the portal guard sees it
  tokengen decode <token>

Use "tokengen <command> -h" for more information about a command.`)
}

func generateSessionToken(userIDRaw, role, tenantIDRaw, secret string, ttl time.Duration, jsonOutput bool) {
	keyType := "custom"
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
		keyType = "env"
	}
	if secret == "" {
		secret = config.DevJWTSecret
		keyType = "dev"
	}

	uid, err := id.ParseUserID(userIDRaw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid user-id: %v\n", err)
		os.Exit(1)
	}
	var tid *id.TenantID
	if tenantIDRaw != "" {
		parsed, err := id.ParseTenantID(tenantIDRaw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid tenant-id: %v\n", err)
			os.Exit(1)
		}
		tid = &parsed
	}

	svc := jwttoken.NewJWTService(secret, ttl)
	token, err := svc.IssueSessionToken(context.Background(), uid, role, tid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	claims := map[string]any{"sub": uid.String(), "role": role, "tenantId": nil}
	if tid != nil {
		claims["tenantId"] = int64(*tid)
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			ExpiresIn: ttl.String(),
			Claims:    claims,
			Usage: map[string]string{
				"header":      "Authorization: Bearer <token>",
				"signing_key": keyType,
			},
		})
		return
	}

	fmt.Println("Session Token (JWT)")
	fmt.Println("===================")
	fmt.Printf("Signing Key: %s\n", keyType)
	fmt.Printf("Expires In:  %s\n", ttl)
	fmt.Printf("User ID:     %s\n", uid)
	fmt.Printf("Role:        %s\n", role)
	if tid != nil {
		fmt.Printf("Tenant ID:   %s\n", tid)
	}
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:3007/auth/tenants")
}

func decodeToken(token string, jsonOutput bool) {
	claims, err := guard.DecodeClaims(token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid token: %v\n", err)
		os.Exit(1)
	}

	out := map[string]any{
		"sub":     claims.Subject,
		"role":    claims.Role,
		"expired": claims.Expired(time.Now()),
	}
	if claims.TenantID != nil {
		out["tenantId"] = *claims.TenantID
	}
	if claims.ExpiresAt != nil {
		out["exp"] = claims.ExpiresAt.UTC().Format(time.RFC3339)
	}

	if jsonOutput {
		printJSON(out)
		return
	}
	fmt.Printf("Subject:    %s\n", claims.Subject)
	fmt.Printf("Role:       %s\n", claims.Role)
	if claims.TenantID != nil {
		fmt.Printf("Tenant ID:  %s\n", strconv.FormatInt(*claims.TenantID, 10))
	}
	if claims.ExpiresAt != nil {
		fmt.Printf("Expires At: %s\n", out["exp"])
	} else {
		fmt.Println("Expires At: never")
	}
	fmt.Printf("Expired:    %t\n", out["expired"])
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
