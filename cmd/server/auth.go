package main

import (
	"os"

	"github.com/goliatone/go-router"

	"github.com/agriconnect/agriconnect/middleware/jwtware"
)

// jwtGuard validates API bearer tokens. Hosted projects that publish a JWK
// set use it; otherwise tokens are checked against the shared HS256 secret,
// which is what both the local provider and legacy hosted projects sign with.
func jwtGuard(cfg config) router.MiddlewareFunc {
	jcfg := jwtware.Config{
		TokenLookup: "header:Authorization,cookie:access_token,query:token",
	}

	if jwksURL := os.Getenv("SUPABASE_JWKS_URL"); jwksURL != "" {
		jcfg.JWKSetURLs = []string{jwksURL}
	} else {
		jcfg.SigningKey = jwtware.SigningKey{
			JWTAlg: "HS256",
			Key:    []byte(cfg.JWTSecret),
		}
	}

	return jwtware.New(jcfg)
}
