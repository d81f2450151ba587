package simplefin

import (
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/config"
)

// AuthState is the saved result of claiming a setup token.
type AuthState struct {
	ClaimedAt        time.Time `json:"claimed_at"`
	AccessURL        string    `json:"access_url"`
	TokenFingerprint string    `json:"token_fingerprint"`
}

// DefaultStateFile is $XDG_DATA_HOME/tally/simplefin_auth.json, falling back
// to ~/.local/share.
func DefaultStateFile() string {
	dataDir := cmp.Or(os.Getenv("XDG_DATA_HOME"), config.ExpandPath("~/.local/share"))
	return filepath.Join(dataDir, "tally", "simplefin_auth.json")
}

// LoadOrClaimAuth returns the access URL saved in stateFile. Without one it
// claims token and saves the result. Setup tokens can be claimed only once,
// so a saved state is always preferred.
func LoadOrClaimAuth(ctx context.Context, client *http.Client, token, stateFile string) (*AuthState, error) {
	store := authStore{path: stateFile}

	if saved, err := store.load(); err == nil && saved.AccessURL != "" {
		slog.Debug("Using saved SimpleFIN access",
			"claimed_at", saved.ClaimedAt.Format(time.DateOnly),
			"state_file", stateFile)
		return saved, nil
	}

	if token == "" {
		return nil, fmt.Errorf("no saved SimpleFIN access in %s and no setup token to claim", stateFile)
	}

	accessURL, err := claimToken(ctx, client, token)
	if err != nil {
		return nil, fmt.Errorf("failed to claim token: %w", err)
	}

	auth := &AuthState{
		AccessURL:        accessURL,
		ClaimedAt:        time.Now(),
		TokenFingerprint: fingerprint(token),
	}
	if err := store.save(auth); err != nil {
		return nil, fmt.Errorf("failed to save auth state: %w", err)
	}

	slog.Info("Claimed SimpleFIN access", "state_file", stateFile)
	return auth, nil
}

// claimToken exchanges a base64 setup token, which encodes a claim URL,
// for an access URL.
func claimToken(ctx context.Context, client *http.Client, token string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(token)
		if err != nil {
			return "", fmt.Errorf("failed to decode SimpleFIN token: %w", err)
		}
	}

	claimURL := string(decoded)
	if !isHTTPURL(claimURL) {
		return "", fmt.Errorf("decoded token is not a valid URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claimURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create claim request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to claim access URL: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read access URL: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to claim SimpleFIN access: %d - %s", resp.StatusCode, string(body))
	}

	accessURL := strings.TrimSpace(string(body))
	if !isHTTPURL(accessURL) {
		return "", fmt.Errorf("invalid access URL received")
	}

	return accessURL, nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// authStore keeps the claimed access URL on disk, readable only by the user.
type authStore struct {
	path string
}

func (s authStore) load() (*AuthState, error) {
	data, err := os.ReadFile(s.path) // #nosec G304
	if err != nil {
		return nil, err
	}

	var auth AuthState
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, fmt.Errorf("corrupt SimpleFIN state %s: %w", s.path, err)
	}
	return &auth, nil
}

func (s authStore) save(auth *AuthState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(auth, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// fingerprint identifies a setup token without storing it.
func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}
