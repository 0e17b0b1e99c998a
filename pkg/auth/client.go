package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mergetutor/pkg/errors"
)

// Client talks to the OTP identity provider's HTTP API.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewClient builds an identity client for the given provider base URL.
func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{},
	}
}

type otpRequest struct {
	Email      string `json:"email"`
	CreateUser bool   `json:"create_user"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
	Type  string `json:"type"`
}

type verifyResponse struct {
	AccessToken string `json:"access_token"`
}

func (c *Client) post(path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialize, "failed to serialize request")
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build request")
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNetwork, "network error").
			WithRetryable(true).
			WithUserMessage(fmt.Sprintf("Network error: %v", err))
	}
	return resp, nil
}

// RequestCode asks the provider to email a one-time code. A non-2xx
// status surfaces the provider's body text so the caller can classify it.
func (c *Client) RequestCode(email string) error {
	resp, err := c.post("/auth/v1/otp", otpRequest{Email: email, CreateUser: true})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return errors.Wrap(readErr, errors.ErrCodeNetwork, "failed to read provider response").
			WithRetryable(true)
	}
	return providerError(string(body))
}

// VerifyCode exchanges email+code for an access token. A 2xx reply whose
// access token is empty is an error distinct from transport failure.
func (c *Client) VerifyCode(email, code string) (string, error) {
	resp, err := c.post("/auth/v1/verify", verifyRequest{Email: email, Token: code, Type: "email"})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", errors.Wrap(readErr, errors.ErrCodeNetwork, "failed to read provider response").
				WithRetryable(true)
		}
		return "", providerError(fmt.Sprintf("failed to verify OTP: %s", string(body)))
	}

	var parsed verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeParse, "failed to parse provider response")
	}
	if parsed.AccessToken == "" {
		return "", errors.New(errors.ErrCodeAuthBadResponse, "invalid authentication response").
			WithUserMessage("Invalid authentication response")
	}
	return parsed.AccessToken, nil
}

// providerError classifies a provider body into a structured error by the
// error codes the provider embeds in it.
func providerError(body string) *errors.Error {
	switch {
	case strings.Contains(body, "over_email_send_rate_limit"), strings.Contains(body, "rate_limit"):
		return errors.New(errors.ErrCodeAuthRateLimit, body).
			WithRetryable(true).
			WithUserMessage("Too many attempts. Please wait a few minutes before trying again.")
	case strings.Contains(body, "otp_expired"):
		return errors.New(errors.ErrCodeAuthCodeExpired, body).
			WithUserMessage("Code has expired or is invalid. Please try again.")
	case strings.Contains(body, "invalid_token"):
		return errors.New(errors.ErrCodeAuthInvalidToken, body).
			WithUserMessage("Invalid code. Please check and try again.")
	default:
		return errors.New(errors.ErrCodeAuthProvider, body).WithUserMessage(body)
	}
}
