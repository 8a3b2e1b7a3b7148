// internal/vault/vault.go
//
// Vault client wrapper for guestlist.
//
// Context
// -------
//   - Thin wrapper around the HashiCorp Vault Go SDK, used once at boot to
//     resolve `vault:` references in configuration (database password or
//     DSN).
//   - Follows the house comment style: header block, section underlines,
//     Oxford commas, two spaces after periods, no m-dash.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New()                          // during boot.
//  2. cfg, err := config.Load(ctx, cli.Resolve)        // resolves refs.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – token with read access to the referenced secrets.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

//
// SECTION 1.  Public façade
//

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api *vault.Client
}

// New constructs a Vault client from the standard VAULT_* environment.
func New() (*Client, error) {
	cfg := vault.DefaultConfig()
	if cfg.Error != nil {
		return nil, fmt.Errorf("vault default cfg: %w", cfg.Error)
	}
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}
	return &Client{api: apiCli}, nil
}

// GetKV fetches a single key from a KV-v2 secret.  secretPath starts with
// the mount, e.g. "secret/guestlist".
func (c *Client) GetKV(ctx context.Context, secretPath, key string) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}
	return sval, nil
}

// Resolve satisfies config.SecretResolver.  ref has the form
// "<mount>/<path>#<key>".
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	p, key, err := parseRef(ref)
	if err != nil {
		return "", err
	}
	return c.GetKV(ctx, p, key)
}

//
// SECTION 2.  Helpers
//

func parseRef(ref string) (secretPath, key string, err error) {
	i := strings.LastIndexByte(ref, '#')
	if i <= 0 || i == len(ref)-1 {
		return "", "", fmt.Errorf("vault ref %q: want <mount>/<path>#<key>", ref)
	}
	return ref[:i], ref[i+1:], nil
}

func splitMount(p string) (mount, rel string) {
	if p == "" {
		return "", ""
	}
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}
