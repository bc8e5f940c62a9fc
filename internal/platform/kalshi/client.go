// Package kalshi adapts the Kalshi trade API to the unified market model.
// Public market data is unauthenticated; portfolio calls are signed with
// RSA-PSS when an API key is configured.
package kalshi

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/platform/restclient"
)

const (
	DefaultBaseURL = "https://api.elections.kalshi.com/trade-api/v2"

	siteURL = "https://kalshi.com/markets/"
)

// Config holds the API root and optional portfolio credentials.
type Config struct {
	BaseURL       string
	APIKeyID      string
	PrivateKeyPEM []byte
	// Concurrency bounds the per-event market fetches.
	Concurrency int
}

// Adapter implements domain.PlatformAdapter for Kalshi.
type Adapter struct {
	client      *restclient.Client
	apiKeyID    string
	privateKey  *rsa.PrivateKey
	concurrency int
	now         func() time.Time
}

var _ domain.PlatformAdapter = (*Adapter)(nil)

// New creates an Adapter. A malformed private key is an error; a missing
// one only disables Positions.
func New(cfg Config, opts restclient.Options) (*Adapter, error) {
	opts.BaseURL = restclient.FirstNonEmpty(cfg.BaseURL, DefaultBaseURL)
	a := &Adapter{
		client:      restclient.New(opts),
		apiKeyID:    cfg.APIKeyID,
		concurrency: cfg.Concurrency,
		now:         time.Now,
	}
	if a.concurrency <= 0 {
		a.concurrency = 8
	}
	if len(cfg.PrivateKeyPEM) > 0 {
		key, err := parsePrivateKey(cfg.PrivateKeyPEM)
		if err != nil {
			return nil, err
		}
		a.privateKey = key
	}
	return a, nil
}

// Platform returns domain.PlatformKalshi.
func (a *Adapter) Platform() domain.Platform { return domain.PlatformKalshi }

// parsePrivateKey accepts PKCS#8 or PKCS#1 PEM.
func parsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("kalshi: no PEM block found in private key")
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		pkcs1Key, pkcs1Err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if pkcs1Err != nil {
			return nil, fmt.Errorf("kalshi: parse private key: %w (pkcs1: %v)", err, pkcs1Err)
		}
		return pkcs1Key, nil
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("kalshi: expected RSA private key, got %T", key)
	}
	return rsaKey, nil
}

// signed returns a request option adding the Kalshi auth headers. The
// signature covers timestamp + method + URL path.
func (a *Adapter) signed() restclient.RequestOption {
	return func(req *http.Request) error {
		if a.privateKey == nil || a.apiKeyID == "" {
			return fmt.Errorf("kalshi: credentials not configured: %w", domain.ErrUnauthorized)
		}

		ts := strconv.FormatInt(a.now().UnixMilli(), 10)
		hash := sha256.Sum256([]byte(ts + req.Method + req.URL.Path))
		sig, err := rsa.SignPSS(rand.Reader, a.privateKey, crypto.SHA256, hash[:], &rsa.PSSOptions{
			SaltLength: rsa.PSSSaltLengthEqualsHash,
		})
		if err != nil {
			return fmt.Errorf("kalshi: RSA sign: %w", err)
		}

		req.Header.Set("KALSHI-ACCESS-KEY", a.apiKeyID)
		req.Header.Set("KALSHI-ACCESS-SIGNATURE", base64.StdEncoding.EncodeToString(sig))
		req.Header.Set("KALSHI-ACCESS-TIMESTAMP", ts)
		return nil
	}
}

// HasCredentials reports whether Positions can be called.
func (a *Adapter) HasCredentials() bool {
	return a.privateKey != nil && a.apiKeyID != ""
}
