package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yoockh/yoointerview/internal/interview"
)

const DefaultBaseURL = "https://api.vapi.ai"

var ErrNoControlURL = errors.New("call has no control url")

// VapiClient talks to the Vapi REST API with a public key, the same
// credentials the browser SDK uses.
type VapiClient struct {
	baseURL   string
	publicKey string
	http      *http.Client
}

func NewVapiClient(baseURL, publicKey string, hc *http.Client) *VapiClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &VapiClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		publicKey: publicKey,
		http:      hc,
	}
}

type webCallRequest struct {
	AssistantID string `json:"assistantId"`
}

type webCallResponse struct {
	ID         string `json:"id"`
	WebCallURL string `json:"webCallUrl"`
	Monitor    struct {
		ListenURL  string `json:"listenUrl"`
		ControlURL string `json:"controlUrl"`
	} `json:"monitor"`
}

type apiErrorBody struct {
	Message any    `json:"message"`
	Error   string `json:"error"`
}

// Open creates a web call for the assistant. The returned WebCallURL is the
// room the browser joins to stream microphone audio.
func (v *VapiClient) Open(ctx context.Context, assistantID string) (interview.Call, error) {
	body, err := json.Marshal(webCallRequest{AssistantID: assistantID})
	if err != nil {
		return interview.Call{}, err
	}

	var out webCallResponse
	if err := v.do(ctx, http.MethodPost, v.baseURL+"/call/web", body, true, &out); err != nil {
		return interview.Call{}, err
	}
	if out.ID == "" {
		return interview.Call{}, errors.New("voice service returned no call id")
	}
	return interview.Call{
		ID:         out.ID,
		WebCallURL: out.WebCallURL,
		ControlURL: out.Monitor.ControlURL,
	}, nil
}

// Close asks the live call to hang up through its control URL.
func (v *VapiClient) Close(ctx context.Context, call interview.Call) error {
	if call.ControlURL == "" {
		return ErrNoControlURL
	}
	return v.do(ctx, http.MethodPost, call.ControlURL, []byte(`{"type":"end-call"}`), false, nil)
}

func (v *VapiClient) do(ctx context.Context, method, url string, body []byte, auth bool, dst any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+v.publicKey)
	}

	resp, err := v.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %s", resp.Status, errorReason(raw))
	}
	if dst == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func errorReason(raw []byte) string {
	var b apiErrorBody
	if err := json.Unmarshal(raw, &b); err == nil {
		switch m := b.Message.(type) {
		case string:
			if m != "" {
				return m
			}
		case []any:
			parts := make([]string, 0, len(m))
			for _, p := range m {
				parts = append(parts, fmt.Sprint(p))
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}
		if b.Error != "" {
			return b.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
