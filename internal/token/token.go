package token

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	splToken "github.com/gagliardetto/solana-go/programs/token"
	"github.com/rs/zerolog/log"

	"ledger-utility-service/internal/api"
)

// ProgramID is the SPL token program every instruction targets
var ProgramID = splToken.ProgramID

// AccountMeta is one account reference of an instruction
type AccountMeta struct {
	PublicKey  solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

// Instruction is a built, immutable instruction descriptor
type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

type TokenService struct {
	verbose bool
}

func NewTokenService(verbose bool) *TokenService {
	return &TokenService{
		verbose: verbose,
	}
}

// BuildInitializeMint builds an InitializeMint instruction.
// The freeze authority is never set.
func (t *TokenService) BuildInitializeMint(mint, mintAuthority solana.PublicKey, decimals uint8) (Instruction, *api.Error) {
	built, err := splToken.NewInitializeMintInstructionBuilder().
		SetDecimals(decimals).
		SetMintAuthority(mintAuthority).
		SetMintAccount(mint).
		SetSysVarRentPubkeyAccount(solana.SysVarRentPubkey).
		ValidateAndBuild()
	if err != nil {
		return Instruction{}, api.InstructionBuild(err)
	}

	instruction, err := describe(built)
	if err != nil {
		return Instruction{}, api.InstructionBuild(err)
	}

	if t.verbose {
		log.Debug().
			Str("mint", mint.String()).
			Str("mint_authority", mintAuthority.String()).
			Uint8("decimals", decimals).
			Int("data_bytes", len(instruction.Data)).
			Msg("built initialize mint instruction")
	}

	return instruction, nil
}

// BuildMintTo builds a MintTo instruction signed by a single authority.
func (t *TokenService) BuildMintTo(mint, destination, authority solana.PublicKey, amount uint64) (Instruction, *api.Error) {
	built, err := splToken.NewMintToInstructionBuilder().
		SetAmount(amount).
		SetMintAccount(mint).
		SetDestinationAccount(destination).
		SetAuthorityAccount(authority).
		ValidateAndBuild()
	if err != nil {
		return Instruction{}, api.InstructionBuild(err)
	}

	instruction, err := describe(built)
	if err != nil {
		return Instruction{}, api.InstructionBuild(err)
	}

	if t.verbose {
		log.Debug().
			Str("mint", mint.String()).
			Str("destination", destination.String()).
			Str("authority", authority.String()).
			Uint64("amount", amount).
			Msg("built mint to instruction")
	}

	return instruction, nil
}

func describe(built solana.Instruction) (Instruction, error) {
	data, err := built.Data()
	if err != nil {
		return Instruction{}, fmt.Errorf("failed to encode instruction data: %w", err)
	}

	metas := built.Accounts()
	accounts := make([]AccountMeta, 0, len(metas))
	for _, meta := range metas {
		accounts = append(accounts, AccountMeta{
			PublicKey:  meta.PublicKey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
		})
	}

	return Instruction{
		ProgramID: built.ProgramID(),
		Accounts:  accounts,
		Data:      data,
	}, nil
}
