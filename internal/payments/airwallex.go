package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Airwallex creates one-time payment intents through the Airwallex REST API.
// There is no official Go SDK, so this is a small authenticated JSON client.
type Airwallex struct {
	BaseURL  string
	ClientID string
	APIKey   string
	HTTP     *http.Client

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func NewAirwallex(baseURL, clientID, apiKey string) *Airwallex {
	if baseURL == "" {
		baseURL = "https://api.airwallex.com"
	}
	return &Airwallex{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		ClientID: clientID,
		APIKey:   apiKey,
		HTTP:     &http.Client{Timeout: 15 * time.Second},
	}
}

type airwallexLoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func (a *Airwallex) authenticate(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.tokenExp) {
		return a.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.BaseURL+"/api/v1/authentication/login", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("x-client-id", a.ClientID)
	req.Header.Set("x-api-key", a.APIKey)

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("airwallex login failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("airwallex login returned %d: %s", resp.StatusCode, body)
	}

	var login airwallexLoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return "", fmt.Errorf("failed to decode airwallex login response: %w", err)
	}

	a.token = login.Token
	a.tokenExp = time.Now().Add(30 * time.Minute)
	if exp, perr := time.Parse(time.RFC3339, login.ExpiresAt); perr == nil {
		a.tokenExp = exp.Add(-time.Minute)
	}
	return a.token, nil
}

type airwallexIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

func (a *Airwallex) CreateSession(ctx context.Context, req SessionRequest) (*CheckoutSession, error) {
	token, err := a.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"request_id":        req.OrderRef,
		"merchant_order_id": req.OrderRef,
		"amount":            float64(req.Product.PriceCents) / 100,
		"currency":          strings.ToUpper(req.Currency),
		"descriptor":        req.Product.Name,
		"metadata": map[string]string{
			"user_id":      strconv.FormatInt(req.UserID, 10),
			"product_slug": req.Product.Slug,
			"order_ref":    req.OrderRef,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.BaseURL+"/api/v1/pa/payment_intents/create", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("airwallex payment intent failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("airwallex payment intent returned %d: %s", resp.StatusCode, respBody)
	}

	var intent airwallexIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("failed to decode airwallex intent response: %w", err)
	}

	return &CheckoutSession{
		SessionID:    intent.ID,
		ClientSecret: intent.ClientSecret,
		Provider:     ProviderAirwallex,
	}, nil
}

// VerifyAirwallexSignature checks the x-signature webhook header, which is
// the hex HMAC-SHA256 of the x-timestamp header concatenated with the raw
// request body.
func VerifyAirwallexSignature(secret, timestamp string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
