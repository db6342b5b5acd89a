// Command classauth-token mints and inspects access credentials for local
// development and manual testing against a classAuth-protected API.
//
//	classauth-token mint -sub s1 -ttl 1h
//	classauth-token inspect <token>
//
// The HS256 secret is read from -secret or JWT_SECRET. For Ed25519 pass
// -method ed25519 with -key (PEM private key) and -pub (PEM public key).
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MrEthical07/classAuth/jwt"
)

func main() {
	os.Exit(run(os.Args[1:], os.LookupEnv, os.Stdout, os.Stderr))
}

func run(args []string, lookup func(string) (string, bool), stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: classauth-token <mint|inspect> [flags]")
		return 2
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		subject  = fs.String("sub", "", "subject id carried in the _id claim (mint)")
		ttl      = fs.Duration("ttl", time.Hour, "credential lifetime (mint)")
		method   = fs.String("method", "hs256", "signing method: hs256 or ed25519")
		secret   = fs.String("secret", "", "hs256 secret; defaults to JWT_SECRET")
		keyFile  = fs.String("key", "", "ed25519 private key PEM file")
		pubFile  = fs.String("pub", "", "ed25519 public key PEM file")
		issuer   = fs.String("iss", "", "issuer claim to set and require")
		audience = fs.String("aud", "", "audience claim to set and require")
	)
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	cfg := jwt.Config{
		SigningMethod: jwt.SigningMethod(*method),
		Issuer:        *issuer,
		Audience:      *audience,
	}
	switch cfg.SigningMethod {
	case jwt.MethodHS256:
		s := *secret
		if s == "" {
			s, _ = lookup("JWT_SECRET")
		}
		if s == "" {
			fmt.Fprintln(stderr, "hs256 needs -secret or JWT_SECRET")
			return 2
		}
		cfg.Secret = []byte(s)
	case jwt.MethodEd25519:
		var err error
		if *keyFile != "" {
			if cfg.Secret, err = os.ReadFile(*keyFile); err != nil {
				fmt.Fprintf(stderr, "read key: %v\n", err)
				return 1
			}
		}
		if cfg.PublicKey, err = os.ReadFile(*pubFile); err != nil {
			fmt.Fprintf(stderr, "read public key: %v\n", err)
			return 1
		}
	default:
		fmt.Fprintf(stderr, "unknown method %q\n", *method)
		return 2
	}

	manager, err := jwt.NewManager(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "configure signer: %v\n", err)
		return 1
	}

	switch args[0] {
	case "mint":
		token, err := manager.CreateAccess(*subject, *ttl)
		if err != nil {
			fmt.Fprintf(stderr, "mint: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, token)
		return 0
	case "inspect":
		if fs.NArg() != 1 {
			fmt.Fprintln(stderr, "inspect takes exactly one token")
			return 2
		}
		claims, err := manager.ParseAccess(fs.Arg(0))
		if err != nil {
			status := "invalid"
			if errors.Is(err, jwt.ErrExpired) {
				status = "expired"
			}
			fmt.Fprintf(stderr, "%s: %v\n", status, err)
			return 1
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(claims); err != nil {
			fmt.Fprintf(stderr, "encode: %v\n", err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		return 2
	}
}
