// Package worker is the HTTP client for the game's worker API, which builds
// unsigned transactions, executes signed batches as jobs, and levels up
// entities.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/reavers-game/go-reavers/service/logger"
	"github.com/reavers-game/go-reavers/service/persist"
	"github.com/reavers-game/go-reavers/util"
)

const (
	// FreezePath requests unsigned freeze transactions
	FreezePath = "/nfts/freeze"
	// ThawPath requests unsigned thaw transactions
	ThawPath = "/nfts/thaw"
	// MintAndWithdrawPath requests unsigned mint-and-withdraw transactions
	MintAndWithdrawPath = "/nfts/mint-and-withdraw"
	// HandleAssetsPath submits a signed batch for execution
	HandleAssetsPath = "/nfts/handle-assets"
	// LevelUpPath submits a level-up job
	LevelUpPath = "/levelup/entities"
)

// TransactionResponse is one unsigned transaction returned by the worker,
// correlated to its asset by mint address or internal uid
type TransactionResponse struct {
	Tx   string `json:"tx"`
	Mint string `json:"mint"`
	ID   string `json:"id,omitempty"`
}

// SignedTransaction is one signed transaction of a batch submitted for
// execution
type SignedTransaction struct {
	Mint string `json:"mint"`
	Tx   string `json:"tx"`
	ID   string `json:"id,omitempty"`
}

// LevelUpRequest is the payload of a level-up job submission
type LevelUpRequest struct {
	Type         persist.AssetType `json:"type"`
	LevelUpUid   string            `json:"levelUpUid"`
	LevelUpCount int               `json:"levelUpCount"`
	JwtToken     string            `json:"jwtToken"`
}

type transactionsRequest struct {
	MintAddresses []string `json:"mintAddresses,omitempty"`
	Uids          []string `json:"uids,omitempty"`
	Type          string   `json:"type"`
	IsCoreNFT     bool     `json:"isCoreNFT,omitempty"`
}

type handleAssetsRequest struct {
	Transactions []SignedTransaction `json:"transactions"`
	Type         string              `json:"type"`
}

type jobResponse struct {
	JobID string `json:"jobId"`
}

// Client is a bearer-token authenticated client for the worker API
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

// NewClient returns a worker client rooted at baseURL. A nil httpClient
// falls back to http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, authToken string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, authToken: authToken}
}

// PathFor maps an action kind to the endpoint that builds its unsigned
// transactions
func PathFor(action persist.ActionType) (string, error) {
	switch action {
	case persist.ActionFreeze:
		return FreezePath, nil
	case persist.ActionThaw:
		return ThawPath, nil
	case persist.ActionMintAndWithdraw:
		return MintAndWithdrawPath, nil
	default:
		return "", fmt.Errorf("unknown action type: %s", action)
	}
}

// CheckAuth verifies a bearer token is present and, when it parses as a JWT,
// that it has not expired. The signature is not verified client-side.
func (c *Client) CheckAuth() error {
	if c.authToken == "" {
		return persist.ErrUnauthorized{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(c.authToken, claims); err != nil {
		// Opaque tokens are passed through; the worker rejects them itself
		return nil
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), false) {
		return persist.ErrUnauthorized{Reason: "bearer token expired"}
	}
	return nil
}

// RequestTransactions asks the worker to build unsigned transactions for the
// given action over the selected assets. The response must be an array with
// one entry per asset.
func (c *Client) RequestTransactions(ctx context.Context, action persist.ActionType, selected []persist.Asset) ([]TransactionResponse, error) {
	path, err := PathFor(action)
	if err != nil {
		return nil, err
	}
	if err := c.CheckAuth(); err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, persist.ErrEmptySelection{}
	}

	ids := util.Map(selected, func(a persist.Asset) string { return a.ID.String() })
	req := transactionsRequest{
		Type:      selected[0].Type.String(),
		IsCoreNFT: selected[0].Type.IsCoreNFT(),
	}
	if action.UsesUids() {
		req.Uids = ids
	} else {
		req.MintAddresses = ids
	}

	body, err := c.post(ctx, path, req)
	if err != nil {
		return nil, err
	}

	if !jsonArrayBody(body) {
		return nil, persist.ErrInvalidServerResponse{Endpoint: path, Reason: "expected an array of transactions"}
	}

	var txs []TransactionResponse
	if err := json.Unmarshal(body, &txs); err != nil {
		return nil, persist.ErrInvalidServerResponse{Endpoint: path, Reason: err.Error()}
	}

	logger.For(ctx).Debugf("received %d unsigned transaction(s) from %s", len(txs), path)
	return txs, nil
}

// SubmitSigned sends a fully signed batch for execution and returns the id
// of the job the worker created for it
func (c *Client) SubmitSigned(ctx context.Context, assetType persist.AssetType, signed []SignedTransaction) (string, error) {
	if err := c.CheckAuth(); err != nil {
		return "", err
	}

	body, err := c.post(ctx, HandleAssetsPath, handleAssetsRequest{Transactions: signed, Type: assetType.String()})
	if err != nil {
		return "", err
	}

	var res jobResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", persist.ErrInvalidServerResponse{Endpoint: HandleAssetsPath, Reason: err.Error()}
	}
	if res.JobID == "" {
		return "", persist.ErrNoJobID{Endpoint: HandleAssetsPath}
	}

	return res.JobID, nil
}

// LevelUp submits a level-up job for a single entity
func (c *Client) LevelUp(ctx context.Context, req LevelUpRequest) (string, error) {
	if err := c.CheckAuth(); err != nil {
		return "", err
	}
	req.JwtToken = util.FirstNonEmpty(req.JwtToken, c.authToken)

	body, err := c.post(ctx, LevelUpPath, req)
	if err != nil {
		return "", err
	}

	var res jobResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", persist.ErrInvalidServerResponse{Endpoint: LevelUpPath, Reason: err.Error()}
	}
	if res.JobID == "" {
		return "", persist.ErrNoJobID{Endpoint: LevelUpPath}
	}

	return res.JobID, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	marshaled, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(marshaled))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.authToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return nil, persist.ErrUnauthorized{Reason: fmt.Sprintf("worker returned status %d", res.StatusCode)}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("worker returned status %d for %s: %s", res.StatusCode, path, util.TruncateWithEllipsis(string(body), 200))
	}

	return body, nil
}

func jsonArrayBody(body []byte) bool {
	for _, b := range body {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
