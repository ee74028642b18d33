package material

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/erp/ledger/internal/domain/shared"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// CodePadding is appended to generated codes shorter than MinCodeLength
	CodePadding = "MLZ"
	// MinCodeLength is the shortest generated base code
	MinCodeLength = 3
	// maxBaseLength caps the base part of a generated code
	maxBaseLength = 20
	// maxCounterSuffix is the last numeric suffix tried before falling back to a timestamp
	maxCounterSuffix = 99
)

// letters that do not decompose under NFD
var foldReplacer = strings.NewReplacer(
	"ı", "i", "İ", "I",
	"ß", "ss", "ẞ", "SS",
	"æ", "ae", "Æ", "AE",
	"ø", "o", "Ø", "O",
	"œ", "oe", "Œ", "OE",
	"đ", "d", "Đ", "D",
	"ł", "l", "Ł", "L",
)

// NormalizeCode trims and upper-cases a material code for lookups and storage
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ToASCII folds accented and locale-specific letters to their ASCII base.
// Characters without an ASCII equivalent are dropped.
func ToASCII(s string) string {
	s = foldReplacer.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range folded {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BaseCode derives the collision-free part of a code from a material name:
// the first letter of every word that starts with a letter, followed by every
// digit run found in the word. Results shorter than MinCodeLength are padded.
func BaseCode(name string) string {
	words := strings.FieldsFunc(ToASCII(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	for _, w := range words {
		if unicode.IsLetter(rune(w[0])) {
			b.WriteByte(w[0])
		}
		b.WriteString(digitRuns(w))
	}

	code := strings.ToUpper(b.String())
	if len(code) > maxBaseLength {
		code = code[:maxBaseLength]
	}
	if len(code) < MinCodeLength {
		code += CodePadding
	}
	return code
}

func digitRuns(w string) string {
	var b strings.Builder
	for i := 0; i < len(w); i++ {
		if w[i] >= '0' && w[i] <= '9' {
			b.WriteByte(w[i])
		}
	}
	return b.String()
}

// CodeExistsFunc reports whether a code is already taken
type CodeExistsFunc func(ctx context.Context, code string) (bool, error)

// GenerateCode returns the first free candidate for name: the base code,
// then base+1 .. base+99, then base plus a base-36 timestamp suffix.
// For the same name and store state the result is always the same until the
// timestamp stage is reached.
func GenerateCode(ctx context.Context, name string, exists CodeExistsFunc, now func() time.Time) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", shared.NewValidationError("material name is required to generate a code")
	}
	base := BaseCode(name)

	candidates := make([]string, 0, maxCounterSuffix+2)
	candidates = append(candidates, base)
	for i := 1; i <= maxCounterSuffix; i++ {
		candidates = append(candidates, base+strconv.Itoa(i))
	}
	candidates = append(candidates, base+"-"+strings.ToUpper(strconv.FormatInt(now().UnixMilli(), 36)))

	for _, c := range candidates {
		taken, err := exists(ctx, c)
		if err != nil {
			return "", err
		}
		if !taken {
			return c, nil
		}
	}
	return "", shared.NewAlreadyExistsError("could not find a free code for %q", name)
}

// LegacyBaseCode strips the trailing counter that GenerateCode appends on
// collisions. A code without such a counter is returned unchanged; a code made
// only of digits yields "".
func LegacyBaseCode(code string) string {
	code = NormalizeCode(code)
	return strings.TrimRightFunc(code, func(r rune) bool {
		return r >= '0' && r <= '9'
	})
}

// PickLegacyMatch chooses the material a legacy code most likely referred to
// among candidates sharing its base prefix: the bare base code first, then the
// first base+counter code. Candidates with any other suffix never match.
func PickLegacyMatch(base string, candidates []Material) *Material {
	var counterMatch *Material
	for i := range candidates {
		c := &candidates[i]
		if c.Code == base {
			return c
		}
		if counterMatch == nil && c.Code != base && LegacyBaseCode(c.Code) == base {
			counterMatch = c
		}
	}
	return counterMatch
}
