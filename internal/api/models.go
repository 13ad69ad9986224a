package api

import "errors"

// Health check
const HealthMessage = "server is working"

// Keypair
type KeyPairResponse struct {
	Pubkey string `json:"pubkey"`
	Secret string `json:"secret"`
}

// Token instructions
type CreateTokenRequest struct {
	MintAuthority string `json:"mintAuthority" binding:"required"`
	Mint          string `json:"mint" binding:"required"`
	Decimals      Number `json:"decimals" binding:"required"`
}

// Number holds a JSON number in its literal form, so range checks see
// values like 1e30 that would overflow a fixed-size integer.
// Quoted strings are rejected; null leaves the value empty.
type Number string

func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) == 0 || (data[0] != '-' && (data[0] < '0' || data[0] > '9')) {
		return errors.New("expected a JSON number")
	}

	*n = Number(data)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	return []byte(n), nil
}

type MintTokenRequest struct {
	Mint        string  `json:"mint" binding:"required"`
	Destination string  `json:"destination" binding:"required"`
	Authority   string  `json:"authority" binding:"required"`
	Amount      *uint64 `json:"amount" binding:"required"`
}

type AccountMeta struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

type InstructionResponse struct {
	ProgramID       string        `json:"program_id"`
	Accounts        []AccountMeta `json:"accounts"`
	InstructionData string        `json:"instruction_data"`
}

// Message signing
type SignMessageRequest struct {
	Message string `json:"message" binding:"required"`
	Secret  string `json:"secret" binding:"required"`
}

type SignMessageResponse struct {
	Signature string `json:"signature"`
	PublicKey string `json:"public_key"`
	Message   string `json:"message"`
}

type VerifyMessageRequest struct {
	Message   string `json:"message" binding:"required"`
	Signature string `json:"signature" binding:"required"`
	Pubkey    string `json:"pubkey" binding:"required"`
}

type VerifyMessageResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Pubkey  string `json:"pubkey"`
}
