package validation

import "strings"

// NormalizeCPF strips formatting characters, keeping digits only.
func NormalizeCPF(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF reports whether cpf is a well-formed Brazilian CPF: 11 digits,
// not all equal, with both check digits matching the mod-11 scheme.
func ValidCPF(cpf string) bool {
	cpf = NormalizeCPF(cpf)
	if len(cpf) != 11 {
		return false
	}

	allSame := true
	for i := 1; i < len(cpf); i++ {
		if cpf[i] != cpf[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	var digits [11]int
	for i := 0; i < 11; i++ {
		digits[i] = int(cpf[i] - '0')
	}

	for j := 9; j <= 10; j++ {
		sum := 0
		for i := 0; i < j; i++ {
			sum += digits[i] * (j + 1 - i)
		}
		check := (sum * 10) % 11
		if check == 10 {
			check = 0
		}
		if check != digits[j] {
			return false
		}
	}

	return true
}
