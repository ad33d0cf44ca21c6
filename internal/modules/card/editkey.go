package card

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// editKeyLength is the number of decimal digits in a card's edit key.
const editKeyLength = 18

// NewEditKey returns a random 18-digit decimal string. Leading zeros are
// allowed, so the key is always exactly 18 characters.
func NewEditKey() (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(editKeyLength), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate edit key: %w", err)
	}
	return fmt.Sprintf("%0*d", editKeyLength, n), nil
}
