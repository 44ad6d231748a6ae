// Package settlement implements §4.5's submitter: a background loop that
// anchors newly sealed state roots to an external settlement contract,
// tolerating transient RPC failures with exponential backoff and never
// submitting a block number out of order.
package settlement

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/finvault/fvl/pkg/fvlerrors"
)

// RetryConfig bounds the submitter's per-call retry/backoff behavior,
// mirrored on the bundled settlement SDK's own RetryConfig.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 5, BaseDelay: 200 * time.Millisecond, MaxDelay: 10 * time.Second}
}

// Client is a thin RPC client for §6's two-method settlement contract
// interface: submitStateRoot and the read-only latest* accessors.
type Client struct {
	BaseURL         string
	ContractAddress string
	SigningKey      string
	HTTPClient      *http.Client
	Retry           RetryConfig
}

func New(baseURL, contractAddress, signingKey string) *Client {
	return &Client{
		BaseURL:         strings.TrimRight(baseURL, "/"),
		ContractAddress: contractAddress,
		SigningKey:      signingKey,
		HTTPClient:      &http.Client{Timeout: 10 * time.Second},
		Retry:           DefaultRetryConfig(),
	}
}

type submitStateRootRequest struct {
	ContractAddress string `json:"contract_address"`
	BlockNumber     uint64 `json:"block_number"`
	StateRoot       string `json:"state_root"`
}

type latestResponse struct {
	BlockNumber uint64 `json:"block_number"`
	StateRoot   string `json:"state_root"`
}

// SubmitStateRoot calls submitStateRoot(blockNumber, stateRoot), signed by
// the configured sequencer key. The contract itself enforces
// blockNumber > latestBlockNumber(); a rejection surfaces as
// fvlerrors.KindRpcRejected.
func (c *Client) SubmitStateRoot(ctx context.Context, blockNumber uint64, stateRoot [32]byte) error {
	body, err := json.Marshal(submitStateRootRequest{
		ContractAddress: c.ContractAddress,
		BlockNumber:     blockNumber,
		StateRoot:       fmt.Sprintf("0x%x", stateRoot),
	})
	if err != nil {
		return err
	}
	_, err = doJSON[latestResponse](ctx, c, http.MethodPost, "/submitStateRoot", body)
	return err
}

// GetLatest calls getLatest() -> (blockNumber, stateRoot).
func (c *Client) GetLatest(ctx context.Context) (uint64, [32]byte, error) {
	resp, err := doJSON[latestResponse](ctx, c, http.MethodGet, "/getLatest?contract_address="+c.ContractAddress, nil)
	if err != nil {
		return 0, [32]byte{}, err
	}
	var root [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(resp.StateRoot, "0x"))
	if err != nil || len(raw) != len(root) {
		return resp.BlockNumber, root, fmt.Errorf("settlement: malformed state root %q", resp.StateRoot)
	}
	copy(root[:], raw)
	return resp.BlockNumber, root, nil
}

func doJSON[T any](ctx context.Context, c *Client, method, path string, body []byte) (*T, error) {
	attempts := c.Retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytesReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if len(body) > 0 {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.SigningKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.SigningKey)
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			lastErr = fvlerrors.New(fvlerrors.KindRpcUnavailable, err.Error())
			if attempt < attempts {
				sleepWithBackoff(ctx, c.Retry, attempt)
				continue
			}
			return nil, lastErr
		}

		var out T
		decodeErr := json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == 429 {
			lastErr = fvlerrors.Newf(fvlerrors.KindRpcUnavailable, "settlement rpc status %d", resp.StatusCode)
			if attempt < attempts {
				sleepWithBackoff(ctx, c.Retry, attempt)
				continue
			}
			return nil, lastErr
		}
		if resp.StatusCode >= 400 {
			return nil, fvlerrors.Newf(fvlerrors.KindRpcRejected, "settlement rpc rejected with status %d", resp.StatusCode)
		}
		if decodeErr != nil {
			return nil, fmt.Errorf("decode settlement response: %w", decodeErr)
		}
		return &out, nil
	}
	return nil, lastErr
}

func sleepWithBackoff(ctx context.Context, cfg RetryConfig, attempt int) {
	d := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt-1))
	if d > float64(cfg.MaxDelay) {
		d = float64(cfg.MaxDelay)
	}
	jittered := time.Duration(d/2) + time.Duration(rand.Int63n(int64(d/2)+1))
	select {
	case <-time.After(jittered):
	case <-ctx.Done():
	}
}

func bytesReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }
