// Command jwks-to-pem prints an identity provider's signing key as PEM,
// ready to be used as IDENTITY_KEY.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"simsync/internal/util"
)

const firebaseJWKS = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

func main() {
	url := flag.String("url", firebaseJWKS, "JWKS endpoint")
	kid := flag.String("kid", "", "key ID to export (default: first key)")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	jwks, err := util.FetchJWKS(ctx, http.DefaultClient, *url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	key, ok := jwks.Find(*kid)
	if !ok {
		fmt.Fprintf(os.Stderr, "No key with kid %q in JWKS\n", *kid)
		os.Exit(1)
	}

	pemKey, err := util.JWKToPEM(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting key %s: %v\n", key.Kid, err)
		os.Exit(1)
	}
	fmt.Print(pemKey)
}
