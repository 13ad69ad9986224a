package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-utility-service/internal/api"
	"ledger-utility-service/internal/codec"
	"ledger-utility-service/internal/crypto"
	"ledger-utility-service/internal/token"
)

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewHandler(crypto.NewCryptoService(false), token.NewTokenService(false), false)

	router := gin.New()
	router.Use(gin.CustomRecovery(handler.Recover))
	router.GET("/check-health", handler.CheckHealth)
	router.POST("/keypair", handler.GenerateKeyPair)
	router.POST("/token/create", handler.CreateToken)
	router.POST("/token/mint", handler.MintToken)
	router.POST("/message/sign", handler.SignMessage)
	router.POST("/message/verify", handler.VerifyMessage)
	router.NoRoute(handler.NotFound)

	return router
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) (int, testEnvelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	// payload XOR error
	if env.Success {
		assert.NotEmpty(t, env.Data)
		assert.Empty(t, env.Error)
	} else {
		assert.Empty(t, env.Data)
		assert.NotEmpty(t, env.Error)
	}

	return rec.Code, env
}

func newPubkey() string {
	return solana.NewWallet().PublicKey().String()
}

func TestCheckHealth(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/check-health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "server is working", rec.Body.String())
}

func TestGenerateKeyPair(t *testing.T) {
	router := newTestRouter()

	status, env := doRequest(t, router, http.MethodPost, "/keypair", "")
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	var keyPair api.KeyPairResponse
	require.NoError(t, json.Unmarshal(env.Data, &keyPair))

	pub, err := codec.FromBase58(keyPair.Pubkey)
	require.NoError(t, err)
	assert.Len(t, pub, 32)

	secret, err := codec.FromBase58(keyPair.Secret)
	require.NoError(t, err)
	assert.Len(t, secret, 64)
}

func TestCreateToken(t *testing.T) {
	router := newTestRouter()
	mint := newPubkey()
	authority := newPubkey()

	body := fmt.Sprintf(`{"mintAuthority":%q,"mint":%q,"decimals":6}`, authority, mint)
	status, env := doRequest(t, router, http.MethodPost, "/token/create", body)
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	var instruction api.InstructionResponse
	require.NoError(t, json.Unmarshal(env.Data, &instruction))

	assert.Equal(t, solana.TokenProgramID.String(), instruction.ProgramID)
	require.NotEmpty(t, instruction.Accounts)
	assert.Equal(t, api.AccountMeta{Pubkey: mint, IsSigner: false, IsWritable: true}, instruction.Accounts[0])

	data, err := codec.FromBase64(instruction.InstructionData)
	require.NoError(t, err)
	assert.Equal(t, byte(6), data[1])
}

func TestCreateTokenDecimalsBoundaries(t *testing.T) {
	router := newTestRouter()
	mint := newPubkey()
	authority := newPubkey()

	for _, decimals := range []string{"0", "18", "1e1"} {
		body := fmt.Sprintf(`{"mintAuthority":%q,"mint":%q,"decimals":%s}`, authority, mint, decimals)
		status, env := doRequest(t, router, http.MethodPost, "/token/create", body)
		assert.Equal(t, http.StatusOK, status, decimals)
		assert.True(t, env.Success, decimals)
	}

	for _, decimals := range []string{"19", "-1", "6.5", "1e30"} {
		body := fmt.Sprintf(`{"mintAuthority":%q,"mint":%q,"decimals":%s}`, authority, mint, decimals)
		status, env := doRequest(t, router, http.MethodPost, "/token/create", body)
		assert.Equal(t, http.StatusBadRequest, status, decimals)
		assert.Equal(t, api.ErrorCodeInvalidDecimals, env.Code, decimals)
		assert.Equal(t, "invalid decimals: must be between 0 and 18", env.Error, decimals)
	}
}

func TestCreateTokenValidationOrder(t *testing.T) {
	router := newTestRouter()
	valid := newPubkey()

	tests := []struct {
		name  string
		body  string
		code  string
		error string
	}{
		{"empty body", `{}`, api.ErrorCodeMissingField, "missing required field: mintAuthority"},
		{"missing decimals", fmt.Sprintf(`{"mintAuthority":%q,"mint":%q}`, valid, valid), api.ErrorCodeMissingField, "missing required field: decimals"},
		{"bad authority before bad mint", `{"mintAuthority":"short","mint":"short","decimals":99}`, api.ErrorCodeInvalidIdentifier, "invalid mintAuthority: expected a base58-encoded 32-byte public key"},
		{"bad mint", fmt.Sprintf(`{"mintAuthority":%q,"mint":"short","decimals":99}`, valid), api.ErrorCodeInvalidIdentifier, "invalid mint: expected a base58-encoded 32-byte public key"},
		{"malformed json", `{"mint":`, api.ErrorCodeInvalidRequest, "Invalid request format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doRequest(t, router, http.MethodPost, "/token/create", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
			assert.Equal(t, tt.error, env.Error)
		})
	}
}

func TestMintToken(t *testing.T) {
	router := newTestRouter()
	mint := newPubkey()
	destination := newPubkey()
	authority := newPubkey()

	body := fmt.Sprintf(`{"mint":%q,"destination":%q,"authority":%q,"amount":1}`, mint, destination, authority)
	status, env := doRequest(t, router, http.MethodPost, "/token/mint", body)
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	var instruction api.InstructionResponse
	require.NoError(t, json.Unmarshal(env.Data, &instruction))
	assert.Equal(t, solana.TokenProgramID.String(), instruction.ProgramID)
	assert.Equal(t, []api.AccountMeta{
		{Pubkey: mint, IsWritable: true},
		{Pubkey: destination, IsWritable: true},
		{Pubkey: authority, IsSigner: true},
	}, instruction.Accounts)

	// amount 0 is rejected
	body = fmt.Sprintf(`{"mint":%q,"destination":%q,"authority":%q,"amount":0}`, mint, destination, authority)
	status, env = doRequest(t, router, http.MethodPost, "/token/mint", body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, api.ErrorCodeInvalidAmount, env.Code)

	// destination is checked before authority
	body = fmt.Sprintf(`{"mint":%q,"destination":"bad","authority":"bad","amount":5}`, mint)
	status, env = doRequest(t, router, http.MethodPost, "/token/mint", body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, api.ErrorCodeInvalidIdentifier, env.Code)
	assert.Contains(t, env.Error, "destination")

	// missing amount
	body = fmt.Sprintf(`{"mint":%q,"destination":%q,"authority":%q}`, mint, destination, authority)
	status, env = doRequest(t, router, http.MethodPost, "/token/mint", body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "missing required field: amount", env.Error)
}

func TestSignAndVerifyMessage(t *testing.T) {
	router := newTestRouter()
	wallet := solana.NewWallet()

	// Test 1: sign
	body := fmt.Sprintf(`{"message":"Hello, ledger!","secret":%q}`, wallet.PrivateKey.String())
	status, env := doRequest(t, router, http.MethodPost, "/message/sign", body)
	require.Equal(t, http.StatusOK, status)

	var signed api.SignMessageResponse
	require.NoError(t, json.Unmarshal(env.Data, &signed))
	assert.Equal(t, wallet.PublicKey().String(), signed.PublicKey)
	assert.Equal(t, "Hello, ledger!", signed.Message)

	// Test 2: verify the untouched message
	body = fmt.Sprintf(`{"message":"Hello, ledger!","signature":%q,"pubkey":%q}`, signed.Signature, signed.PublicKey)
	status, env = doRequest(t, router, http.MethodPost, "/message/verify", body)
	require.Equal(t, http.StatusOK, status)

	var verified api.VerifyMessageResponse
	require.NoError(t, json.Unmarshal(env.Data, &verified))
	assert.True(t, verified.Valid)
	assert.Equal(t, signed.PublicKey, verified.Pubkey)

	// Test 3: a tampered message is a normal false, not an error
	body = fmt.Sprintf(`{"message":"Hello, ledger?","signature":%q,"pubkey":%q}`, signed.Signature, signed.PublicKey)
	status, env = doRequest(t, router, http.MethodPost, "/message/verify", body)
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	require.NoError(t, json.Unmarshal(env.Data, &verified))
	assert.False(t, verified.Valid)
}

func TestSignMessageErrors(t *testing.T) {
	router := newTestRouter()
	first := solana.NewWallet()
	second := solana.NewWallet()

	spliced := make([]byte, 64)
	copy(spliced[:32], first.PrivateKey[:32])
	copy(spliced[32:], second.PublicKey().Bytes())

	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing message", fmt.Sprintf(`{"secret":%q}`, first.PrivateKey.String()), api.ErrorCodeMissingField},
		{"missing secret", `{"message":"hi"}`, api.ErrorCodeMissingField},
		{"public key as secret", fmt.Sprintf(`{"message":"hi","secret":%q}`, first.PublicKey().String()), api.ErrorCodeInvalidSecretKey},
		{"not base58", `{"message":"hi","secret":"0OIl"}`, api.ErrorCodeInvalidSecretKey},
		{"mismatched halves", fmt.Sprintf(`{"message":"hi","secret":%q}`, codec.ToBase58(spliced)), api.ErrorCodeKeyReconstruction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doRequest(t, router, http.MethodPost, "/message/sign", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestVerifyMessageErrors(t *testing.T) {
	router := newTestRouter()
	pubkey := newPubkey()
	signature := codec.ToBase64(make([]byte, 64))

	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing signature", fmt.Sprintf(`{"message":"hi","pubkey":%q}`, pubkey), api.ErrorCodeMissingField},
		{"short signature", fmt.Sprintf(`{"message":"hi","signature":%q,"pubkey":%q}`, codec.ToBase64(make([]byte, 10)), pubkey), api.ErrorCodeInvalidSignature},
		{"signature not base64", fmt.Sprintf(`{"message":"hi","signature":"***","pubkey":%q}`, pubkey), api.ErrorCodeInvalidSignature},
		{"bad pubkey", fmt.Sprintf(`{"message":"hi","signature":%q,"pubkey":"abc"}`, signature), api.ErrorCodeInvalidIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doRequest(t, router, http.MethodPost, "/message/verify", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestNotFound(t *testing.T) {
	router := newTestRouter()

	status, env := doRequest(t, router, http.MethodPost, "/token/burn", `{}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, api.ErrorCodeNotFound, env.Code)
}

func TestRecoverWritesInternalError(t *testing.T) {
	router := newTestRouter()
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	status, env := doRequest(t, router, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, api.ErrorCodeInternalError, env.Code)
}

func TestInstructionBuildFailureEnvelope(t *testing.T) {
	handler := NewHandler(crypto.NewCryptoService(false), token.NewTokenService(false), false)

	var recorded []*gin.Error
	router := newTestRouter()
	router.POST("/token/broken", func(c *gin.Context) {
		handler.writeError(c, api.InstructionBuild(errors.New("accounts not set")))
		recorded = c.Errors
	})

	status, env := doRequest(t, router, http.MethodPost, "/token/broken", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.False(t, env.Success)
	assert.Equal(t, api.ErrorCodeInstructionBuild, env.Code)
	assert.Equal(t, "failed to build instruction: accounts not set", env.Error)
	assert.Empty(t, env.Data)

	require.Len(t, recorded, 1)
	assert.EqualError(t, recorded[0].Err, "accounts not set")
}
