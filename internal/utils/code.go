package utils

import "crypto/rand"

// codeCharset is the alphabet reservation codes are drawn from.  Codes
// are human-presentable, so only uppercase letters and digits are used.
const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ReservationCode returns a random code of n characters drawn from
// [A-Z0-9].  The underlying call to crypto/rand ensures
// cryptographically secure random bytes.  Uniqueness against already
// issued codes is the caller's responsibility.
func ReservationCode(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    for i := 0; i < n; i++ {
        buf[i] = codeCharset[int(buf[i])%len(codeCharset)]
    }
    return string(buf), nil
}
