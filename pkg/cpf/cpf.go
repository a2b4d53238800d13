// Package cpf validates and formats Brazilian CPF numbers.
package cpf

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

// Strip removes every non-digit character from a CPF string.
func Strip(cpf string) string {
	return nonDigits.ReplaceAllString(cpf, "")
}

// Valid reports whether the given CPF has correct check digits.
// Input may be masked ("111.444.777-35") or bare ("11144477735").
func Valid(cpf string) bool {
	digits := Strip(cpf)
	if len(digits) != 11 {
		return false
	}
	// All-same-digit sequences pass the check-digit math but are not
	// assignable CPFs.
	if strings.Count(digits, string(digits[0])) == 11 {
		return false
	}

	if checkDigit(digits, 9, 11) != int(digits[9]-'0') {
		return false
	}
	return checkDigit(digits, 10, 12) == int(digits[10]-'0')
}

// checkDigit computes the nth verification digit over the first n digits,
// with weights counting down from start-1.
func checkDigit(digits string, n, start int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (start - 1 - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 || rest == 11 {
		rest = 0
	}
	return rest
}

// Format renders a bare 11-digit CPF as 000.000.000-00. Inputs that are not
// 11 digits are returned unchanged.
func Format(cpf string) string {
	digits := Strip(cpf)
	if len(digits) != 11 {
		return cpf
	}
	return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
}
