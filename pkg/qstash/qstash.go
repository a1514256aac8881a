package qstash

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	SignatureHeader       = "Upstash-Signature"
	NonRetryableHeader    = "Upstash-NonRetryable-Error"
	StatusNonRetryable    = 489
	forwardHeaderPrefix   = "Upstash-Forward-"
	maxResponseSizeBytes  = 1 << 20
	signatureIssuer       = "Upstash"
	defaultClockTolerance = 5 * time.Second
)

var ErrInvalidSignature = errors.New("qstash signature is invalid")

// Config is read with the QSTASH prefix. Destination is the public URL QStash
// delivers published messages to.
type Config struct {
	URL               string        `split_words:"true" default:"https://qstash.upstash.io"`
	Token             string        `split_words:"true"`
	CurrentSigningKey string        `split_words:"true"`
	NextSigningKey    string        `split_words:"true"`
	Destination       string        `split_words:"true"`
	Retries           int           `split_words:"true" default:"3"`
	Timeout           time.Duration `split_words:"true" default:"10s"`
}

type Client struct {
	baseURL           string
	token             string
	currentSigningKey string
	nextSigningKey    string
	retries           int
	httpClient        *http.Client

	now func() time.Time
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("qstash url is required")
	}

	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL:           strings.TrimRight(baseURL, "/"),
		token:             strings.TrimSpace(cfg.Token),
		currentSigningKey: strings.TrimSpace(cfg.CurrentSigningKey),
		nextSigningKey:    strings.TrimSpace(cfg.NextSigningKey),
		retries:           cfg.Retries,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}

	return client, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

type publishResponse struct {
	MessageID string `json:"messageId"`
	Error     string `json:"error"`
}

// Publish hands body to QStash for delivery to destination. Headers are
// forwarded to the destination unchanged. It returns the QStash message id.
func (c *Client) Publish(ctx context.Context, destination string, body []byte, headers map[string]string) (string, error) {
	if c.token == "" {
		return "", errors.New("qstash token is required")
	}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return "", errors.New("qstash destination is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/publish/"+destination, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	if c.retries >= 0 {
		req.Header.Set("Upstash-Retries", fmt.Sprint(c.retries))
	}
	for k, v := range headers {
		req.Header.Set(forwardHeaderPrefix+k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes+1))
	if err != nil {
		return "", err
	}
	if len(raw) > maxResponseSizeBytes {
		return "", errors.New("qstash response too large")
	}

	var out publishResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", fmt.Errorf("qstash decode response: %w", err)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != "" {
			return "", fmt.Errorf("qstash publish status %d: %s", resp.StatusCode, out.Error)
		}
		return "", fmt.Errorf("qstash publish status %d", resp.StatusCode)
	}
	return out.MessageID, nil
}

type signatureClaims struct {
	Body string `json:"body"`
	jwt.RegisteredClaims
}

// Verify checks the Upstash-Signature JWT of a delivered message against the
// current signing key, then the next one. An empty destination skips the
// subject check.
func (c *Client) Verify(signature string, body []byte, destination string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return fmt.Errorf("%w: missing %s header", ErrInvalidSignature, SignatureHeader)
	}
	if c.currentSigningKey == "" && c.nextSigningKey == "" {
		return errors.New("qstash signing keys are not configured")
	}

	var lastErr error
	for _, key := range []string{c.currentSigningKey, c.nextSigningKey} {
		if key == "" {
			continue
		}
		if err := c.verifyWithKey(signature, key, body, destination); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInvalidSignature, lastErr)
}

func (c *Client) verifyWithKey(signature, key string, body []byte, destination string) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	claims := &signatureClaims{}
	if _, err := parser.ParseWithClaims(signature, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(key), nil
	}); err != nil {
		return err
	}

	now := c.now()
	if claims.ExpiresAt != nil && now.After(claims.ExpiresAt.Add(defaultClockTolerance)) {
		return errors.New("signature expired")
	}
	if claims.NotBefore != nil && now.Add(defaultClockTolerance).Before(claims.NotBefore.Time) {
		return errors.New("signature not valid yet")
	}
	if claims.Issuer != signatureIssuer {
		return fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	if destination != "" && claims.Subject != destination {
		return fmt.Errorf("unexpected subject %q", claims.Subject)
	}

	sum := sha256.Sum256(body)
	want := base64.RawURLEncoding.EncodeToString(sum[:])
	if strings.TrimRight(claims.Body, "=") != want {
		return errors.New("body hash mismatch")
	}
	return nil
}
