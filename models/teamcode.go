package models

import (
	"crypto/rand"
	"math/big"

	"gorm.io/gorm"
)

const (
	teamCodeLength   = 5
	teamCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	teamCodeAttempts = 5
)

// RandomTeamCode returns 5 random uppercase ASCII letters.
func RandomTeamCode() (string, error) {
	code := make([]byte, teamCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(teamCodeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = teamCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// PickTeamCode draws candidates until one passes the existence check,
// trying at most 5 candidates. The bound keeps worst-case latency fixed;
// with a 26^5 code space a miss is practically impossible at the expected
// team counts.
func PickTeamCode(exists func(code string) (bool, error)) (string, error) {
	for i := 0; i < teamCodeAttempts; i++ {
		code, err := RandomTeamCode()
		if err != nil {
			return "", err
		}
		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

// allocateTeamCode finds a code unused within the competition.
func allocateTeamCode(tx *gorm.DB, competition string) (string, error) {
	return PickTeamCode(func(code string) (bool, error) {
		var count int64
		err := tx.Model(&Team{}).
			Where("competition = ? AND code = ?", competition, code).
			Count(&count).Error
		return count > 0, err
	})
}
