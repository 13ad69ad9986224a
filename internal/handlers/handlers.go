package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"ledger-utility-service/internal/api"
	"ledger-utility-service/internal/codec"
	"ledger-utility-service/internal/crypto"
	"ledger-utility-service/internal/token"
	"ledger-utility-service/internal/validation"
)

type Handler struct {
	cryptoService *crypto.CryptoService
	tokenService  *token.TokenService
	verbose       bool
}

func NewHandler(cryptoService *crypto.CryptoService, tokenService *token.TokenService, verbose bool) *Handler {
	validation.Setup()

	return &Handler{
		cryptoService: cryptoService,
		tokenService:  tokenService,
		verbose:       verbose,
	}
}

// GET /check-health
func (h *Handler) CheckHealth(c *gin.Context) {
	c.String(http.StatusOK, api.HealthMessage)
}

// POST /keypair
func (h *Handler) GenerateKeyPair(c *gin.Context) {
	keyPair, err := h.cryptoService.GenerateKeyPair()
	if err != nil {
		h.writeError(c, api.Internal(err))
		return
	}

	h.writeSuccess(c, api.KeyPairResponse{
		Pubkey: keyPair.PublicKey.String(),
		Secret: keyPair.PrivateKey.String(),
	})
}

// POST /token/create
func (h *Handler) CreateToken(c *gin.Context) {
	var req api.CreateTokenRequest
	if apiErr := validation.BindJSON(c, &req); apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	mintAuthority, apiErr := validation.PublicKey("mintAuthority", req.MintAuthority)
	if apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	mint, apiErr := validation.PublicKey("mint", req.Mint)
	if apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	decimals, apiErr := validation.Decimals(req.Decimals)
	if apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	instruction, apiErr := h.tokenService.BuildInitializeMint(mint, mintAuthority, decimals)
	if apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	h.writeSuccess(c, instructionResponse(instruction))
}

// POST /token/mint
func (h *Handler) MintToken(c *gin.Context) {
	var req api.MintTokenRequest
	if apiErr := validation.BindJSON(c, &req); apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	mint, apiErr := validation.PublicKey("mint", req.Mint)
	if apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	destination, apiErr := validation.PublicKey("destination", req.Destination)
	if apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	authority, apiErr := validation.PublicKey("authority", req.Authority)
	if apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	amount, apiErr := validation.Amount(*req.Amount)
	if apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	instruction, apiErr := h.tokenService.BuildMintTo(mint, destination, authority, amount)
	if apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	h.writeSuccess(c, instructionResponse(instruction))
}

// POST /message/sign
func (h *Handler) SignMessage(c *gin.Context) {
	var req api.SignMessageRequest
	if apiErr := validation.BindJSON(c, &req); apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	secret, apiErr := validation.SecretKey(req.Secret)
	if apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	result, apiErr := h.cryptoService.Sign([]byte(req.Message), secret)
	if apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	h.writeSuccess(c, api.SignMessageResponse{
		Signature: codec.ToBase64(result.Signature[:]),
		PublicKey: result.PublicKey.String(),
		Message:   req.Message,
	})
}

// POST /message/verify
func (h *Handler) VerifyMessage(c *gin.Context) {
	var req api.VerifyMessageRequest
	if apiErr := validation.BindJSON(c, &req); apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	signature, apiErr := validation.Signature(req.Signature)
	if apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	pubkey, apiErr := validation.PublicKey("pubkey", req.Pubkey)
	if apiErr != nil {
		h.writeError(c, apiErr)
		return
	}

	valid := h.cryptoService.Verify(pubkey, signature, []byte(req.Message))

	h.writeSuccess(c, api.VerifyMessageResponse{
		Valid:   valid,
		Message: req.Message,
		Pubkey:  req.Pubkey,
	})
}

// NoRoute fallback
func (h *Handler) NotFound(c *gin.Context) {
	h.writeError(c, api.NotFound())
}

// Recover turns a recovered panic into an internal error envelope
func (h *Handler) Recover(c *gin.Context, recovered any) {
	log.Error().Interface("panic", recovered).Str("uri", c.Request.RequestURI).Msg("recovered from panic")
	h.writeError(c, api.Internal(nil))
	c.Abort()
}

func instructionResponse(instruction token.Instruction) api.InstructionResponse {
	accounts := make([]api.AccountMeta, 0, len(instruction.Accounts))
	for _, account := range instruction.Accounts {
		accounts = append(accounts, api.AccountMeta{
			Pubkey:     account.PublicKey.String(),
			IsSigner:   account.IsSigner,
			IsWritable: account.IsWritable,
		})
	}

	return api.InstructionResponse{
		ProgramID:       instruction.ProgramID.String(),
		Accounts:        accounts,
		InstructionData: codec.ToBase64(instruction.Data),
	}
}

func (h *Handler) writeSuccess(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, api.Success(payload))
}

func (h *Handler) writeError(c *gin.Context, apiErr *api.Error) {
	status := apiErr.StatusCode()

	if status >= http.StatusInternalServerError {
		log.Error().Str("code", apiErr.Code).AnErr("cause", apiErr.Err).Msg(apiErr.Message)
		if apiErr.Err != nil {
			_ = c.Error(apiErr.Err)
		}
	} else if h.verbose {
		log.Debug().Int("status", status).Str("code", apiErr.Code).Msg(apiErr.Message)
	}

	c.JSON(status, api.Failure(apiErr))
}
