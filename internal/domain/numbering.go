package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Document number prefixes.
const (
	InvoiceNumberPrefix = "INV"
	QuoteNumberPrefix   = "Q"
)

const fallbackSuffixLen = 6

const suffixAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// YearPrefix is the shared start of every sequential number for a year, e.g. "INV-2026-".
func YearPrefix(prefix string, year int) string {
	return fmt.Sprintf("%s-%d-", prefix, year)
}

// FormatDocumentNumber renders a sequential number such as INV-2026-007.
func FormatDocumentNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s%03d", YearPrefix(prefix, year), seq)
}

// ParseDocumentSequence extracts N from {prefix}-{year}-{N}. It reports false
// when the number belongs to another year or is not sequential.
func ParseDocumentSequence(prefix string, year int, number string) (int, bool) {
	rest, ok := strings.CutPrefix(number, YearPrefix(prefix, year))
	if !ok || rest == "" {
		return 0, false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// RandomDocumentNumber renders the non-sequential fallback such as
// INV-2026-K7QX2M, used only when sequential allocation keeps colliding.
func RandomDocumentNumber(prefix string, year int) (string, error) {
	var sb strings.Builder
	sb.WriteString(YearPrefix(prefix, year))
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := 0; i < fallbackSuffixLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating number suffix: %w", err)
		}
		sb.WriteByte(suffixAlphabet[n.Int64()])
	}
	return sb.String(), nil
}
