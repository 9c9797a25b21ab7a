package practice

import (
	"math/big"
	"slices"
	"strconv"
	"strings"
)

// CheckAnswer reports whether response matches the exercise's canonical
// answer. Exact matches after trimming always pass. Multiple-choice
// responses must be one of the options. Numeric answers also accept plain
// decimal spellings ("10.0" for "10", "$1.75" for "1.75"); a fraction is
// accepted only when the answer itself is a fraction. Clock answers accept a
// zero-padded hour.
func CheckAnswer(ex Exercise, response string) bool {
	got := strings.TrimSpace(response)
	if got == "" {
		return false
	}
	if ex.Interaction == ChoiceInteraction && len(ex.Options) > 0 {
		return slices.Contains(ex.Options, got) && got == ex.Answer
	}
	if got == ex.Answer {
		return true
	}

	if ex.Interaction == ClockInteraction {
		wh, wm, ok := parseClock(ex.Answer)
		if !ok {
			return false
		}
		gh, gm, ok := parseClock(got)
		return ok && wh == gh && wm == gm
	}

	fractions := strings.Contains(ex.Answer, "/")
	want, ok := parseNumber(ex.Answer, fractions)
	if !ok {
		return false
	}
	have, ok := parseNumber(got, fractions)
	return ok && want.Cmp(have) == 0
}

// parseNumber reads plain decimal text with an optional sign and dollar
// sign. With fractions set it also reads "a/b" of unsigned integers.
func parseNumber(s string, fractions bool) (*big.Rat, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if num, den, found := strings.Cut(s, "/"); found {
		if !fractions || !isDigits(num) || !isDigits(den) {
			return nil, false
		}
		r, ok := new(big.Rat).SetString(num + "/" + den)
		return r, ok
	}
	if !isDecimal(s) {
		return nil, false
	}
	return new(big.Rat).SetString(s)
}

func isDecimal(s string) bool {
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return false
	}
	return (whole == "" || isDigits(whole)) && (frac == "" || isDigits(frac))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func parseClock(s string) (int, int, bool) {
	h, m, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found || len(m) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return 0, 0, false
	}
	return hour, minute, true
}
