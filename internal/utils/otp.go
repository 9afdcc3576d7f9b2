package utils

import (
    "crypto/rand"
    "fmt"
    "math/big"
)

// GenerateOTPCode returns a uniformly random 6-digit numeric code drawn
// from crypto/rand.  The range is 100000-999999 so the code always prints
// as exactly six digits.
func GenerateOTPCode() (string, error) {
    n, err := rand.Int(rand.Reader, big.NewInt(900000))
    if err != nil {
        return "", err
    }
    return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
