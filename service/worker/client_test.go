package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reavers-game/go-reavers/service/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAssets(t persist.AssetType, minted bool, ids ...string) []persist.Asset {
	assets := make([]persist.Asset, len(ids))
	for i, id := range ids {
		assets[i] = persist.Asset{ID: persist.AssetID(id), Type: t, Minted: minted}
	}
	return assets
}

func TestRequestTransactions(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	t.Run("freeze sends mint addresses", func(t *testing.T) {
		var got map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.Equal(FreezePath, r.URL.Path)
			a.Equal("Bearer token-1", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			json.NewEncoder(w).Encode([]TransactionResponse{{Tx: "abc", Mint: "mint-1"}})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, nil, "token-1")
		txs, err := c.RequestTransactions(ctx, persist.ActionFreeze, testAssets(persist.TypeShip, true, "mint-1"))
		require.NoError(t, err)

		a.Len(txs, 1)
		a.Equal("mint-1", txs[0].Mint)
		a.Equal([]interface{}{"mint-1"}, got["mintAddresses"])
		a.Equal("SHIP", got["type"])
		a.NotContains(got, "uids")
	})

	t.Run("mint-and-withdraw sends uids", func(t *testing.T) {
		var got map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.Equal(MintAndWithdrawPath, r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			json.NewEncoder(w).Encode([]TransactionResponse{{Tx: "abc", Mint: "mint-1", ID: "uid-1"}})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, nil, "token-1")
		_, err := c.RequestTransactions(ctx, persist.ActionMintAndWithdraw, testAssets(persist.TypeShip, false, "uid-1"))
		require.NoError(t, err)

		a.Equal([]interface{}{"uid-1"}, got["uids"])
		a.NotContains(got, "mintAddresses")
	})

	t.Run("genesis ships are flagged as core NFTs", func(t *testing.T) {
		var got map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			json.NewEncoder(w).Encode([]TransactionResponse{})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, nil, "token-1")
		_, err := c.RequestTransactions(ctx, persist.ActionThaw, testAssets(persist.TypeGenesisShip, true, "mint-1"))
		require.NoError(t, err)

		a.Equal(true, got["isCoreNFT"])
	})

	t.Run("rejects a non-array response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"error": "oops"})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, nil, "token-1")
		_, err := c.RequestTransactions(ctx, persist.ActionFreeze, testAssets(persist.TypeShip, true, "mint-1"))

		var invalid persist.ErrInvalidServerResponse
		a.ErrorAs(err, &invalid)
		a.Equal(FreezePath, invalid.Endpoint)
	})

	t.Run("fails without a bearer token before any call", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		c := NewClient(srv.URL, nil, "")
		_, err := c.RequestTransactions(ctx, persist.ActionFreeze, testAssets(persist.TypeShip, true, "mint-1"))

		a.ErrorAs(err, &persist.ErrUnauthorized{})
		a.False(called)
	})

	t.Run("maps 401 responses to unauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, nil, "token-1")
		_, err := c.RequestTransactions(ctx, persist.ActionFreeze, testAssets(persist.TypeShip, true, "mint-1"))
		a.ErrorAs(err, &persist.ErrUnauthorized{})
	})
}

func TestSubmitSigned(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	t.Run("returns the job id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.Equal(HandleAssetsPath, r.URL.Path)

			var got map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			a.Equal("SHIP", got["type"])
			a.Len(got["transactions"], 2)

			json.NewEncoder(w).Encode(map[string]string{"jobId": "job-42"})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, nil, "token-1")
		jobID, err := c.SubmitSigned(ctx, persist.TypeShip, []SignedTransaction{
			{Mint: "mint-1", Tx: "signed-1"},
			{Mint: "mint-2", Tx: "signed-2"},
		})
		require.NoError(t, err)
		a.Equal("job-42", jobID)
	})

	t.Run("fails when the response lacks a job id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, nil, "token-1")
		_, err := c.SubmitSigned(ctx, persist.TypeShip, []SignedTransaction{{Mint: "mint-1", Tx: "signed-1"}})

		var noJob persist.ErrNoJobID
		a.ErrorAs(err, &noJob)
	})
}

func TestLevelUp(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.Equal(LevelUpPath, r.URL.Path)

		var got LevelUpRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		a.Equal(persist.TypeCaptain, got.Type)
		a.Equal("uid-9", got.LevelUpUid)
		a.Equal(3, got.LevelUpCount)
		a.Equal("token-1", got.JwtToken) // defaults to the client token

		json.NewEncoder(w).Encode(map[string]string{"jobId": "job-7"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, "token-1")
	jobID, err := c.LevelUp(ctx, LevelUpRequest{Type: persist.TypeCaptain, LevelUpUid: "uid-9", LevelUpCount: 3})
	require.NoError(t, err)
	a.Equal("job-7", jobID)
}

func TestPathFor(t *testing.T) {
	a := assert.New(t)

	for action, want := range map[persist.ActionType]string{
		persist.ActionFreeze:          FreezePath,
		persist.ActionThaw:            ThawPath,
		persist.ActionMintAndWithdraw: MintAndWithdrawPath,
	} {
		got, err := PathFor(action)
		a.NoError(err)
		a.Equal(want, got)
	}

	_, err := PathFor(persist.ActionType("burn"))
	a.Error(err)
}
