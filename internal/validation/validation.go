package validation

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"ledger-utility-service/internal/api"
	"ledger-utility-service/internal/codec"
)

const (
	PublicKeyLength = solana.PublicKeyLength
	SecretKeyLength = 64
	SignatureLength = solana.SignatureLength

	MaxDecimals = 18
)

var setupOnce sync.Once

// Setup makes gin's validator report fields by their json names.
func Setup() {
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonTagName)
		}
	})
}

func jsonTagName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// BindJSON decodes the request body into req and checks required fields.
// The first missing field in declaration order is reported.
func BindJSON(c *gin.Context, req any) *api.Error {
	Setup()

	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return api.MissingField(fieldErrs[0].Field())
	}

	return api.InvalidRequest(err)
}

// PublicKey checks that value is a base58 identifier of exactly 32 bytes
func PublicKey(field, value string) (solana.PublicKey, *api.Error) {
	raw, err := codec.FromBase58Fixed(value, PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, api.InvalidIdentifier(field, err)
	}

	return solana.PublicKeyFromBytes(raw), nil
}

// SecretKey checks that value is a base58 secret key of exactly 64 bytes.
// Whether the two halves belong together is checked when signing.
func SecretKey(value string) (solana.PrivateKey, *api.Error) {
	raw, err := codec.FromBase58Fixed(value, SecretKeyLength)
	if err != nil {
		return nil, api.InvalidSecretKey(err)
	}

	return solana.PrivateKey(raw), nil
}

// Signature checks that value is a base64 signature of exactly 64 bytes
func Signature(value string) (solana.Signature, *api.Error) {
	raw, err := codec.FromBase64Fixed(value, SignatureLength)
	if err != nil {
		return solana.Signature{}, api.InvalidSignature(err)
	}

	return solana.SignatureFromBytes(raw), nil
}

// Decimals checks that value is a whole number with 0 <= value <= 18.
// Exponent forms such as 1e1 are accepted.
func Decimals(value api.Number) (uint8, *api.Error) {
	n, err := strconv.ParseFloat(string(value), 64)
	if err != nil || n != math.Trunc(n) || n < 0 || n > MaxDecimals {
		return 0, api.InvalidDecimals()
	}

	return uint8(n), nil
}

// Amount checks value > 0
func Amount(value uint64) (uint64, *api.Error) {
	if value == 0 {
		return 0, api.InvalidAmount()
	}

	return value, nil
}
