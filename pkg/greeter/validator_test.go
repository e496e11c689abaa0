package greeter

import (
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tt := map[string]struct {
		name        string
		wantSuccess bool
	}{
		"simple name":                 {name: "Raphael", wantSuccess: true},
		"name with spaces":            {name: "Ada Lovelace", wantSuccess: true},
		"single letter":               {name: "a", wantSuccess: true},
		"single space":                {name: " ", wantSuccess: true},
		"only spaces":                 {name: "     ", wantSuccess: true},
		"exactly thirty characters":   {name: strings.Repeat("ab", 15), wantSuccess: true},
		"thirty with spaces":          {name: strings.Repeat("a ", 15), wantSuccess: true},
		"empty string":                {name: ""},
		"thirty one characters":       {name: strings.Repeat("a", 31)},
		"script tag":                  {name: "<script>alert(1)</script>"},
		"digits":                      {name: "R2D2"},
		"punctuation":                 {name: "O'Brien"},
		"hyphen":                      {name: "Jean-Luc"},
		"tab":                         {name: "Ada\tLovelace"},
		"trailing newline":            {name: "Raphael\n"},
		"leading newline":             {name: "\nRaphael"},
		"null byte":                   {name: "Raph\x00ael"},
		"non ascii letter":            {name: "José"},
		"fullwidth letters":           {name: "Ｒａｐｈａｅｌ"},
		"sql injection":               {name: "Robert'); DROP TABLE students;--"},
		"valid prefix invalid suffix": {name: "Raphael!"},
		"ansi escape":                 {name: "\x1b[31mred"},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			res := Validate(tc.name)

			if tc.wantSuccess {
				assert.True(t, res.IsSuccess())
				assert.Equal(t, "Hello, "+tc.name+"!", res.Message())
				assert.Empty(t, res.ErrorMessage())
			} else {
				assert.False(t, res.IsSuccess())
				assert.Equal(t, InvalidNameMessage, res.ErrorMessage())
				assert.Empty(t, res.Message())
			}
		})
	}
}

func TestValidateScenarios(t *testing.T) {
	assert.Equal(t, Success("Hello, Raphael!"), Validate("Raphael"))
	assert.Equal(t, Failure("Invalid name — only letters and spaces allowed."), Validate("<script>alert(1)</script>"))
}

func TestValidateBoundaries(t *testing.T) {
	assert.True(t, Validate(strings.Repeat("x", 1)).IsSuccess())
	assert.True(t, Validate(strings.Repeat("x", 30)).IsSuccess())
	assert.False(t, Validate(strings.Repeat("x", 31)).IsSuccess())
	assert.False(t, Validate(strings.Repeat("x", 0)).IsSuccess())
}

func TestValidateIsIdempotent(t *testing.T) {
	for _, name := range []string{"Raphael", "", "<b>", strings.Repeat("z", 40)} {
		assert.Equal(t, Validate(name), Validate(name))
	}
}

func TestValidateAgreesWithPattern(t *testing.T) {
	reference := regexp.MustCompile(NamePattern)
	alphabet := []rune("abcXYZ <>&;'\"0129\t\n-_.é")
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		n := rng.Intn(35)
		var sb strings.Builder
		for j := 0; j < n; j++ {
			sb.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		s := sb.String()

		res := Validate(s)
		if reference.MatchString(s) {
			assert.Equal(t, Success("Hello, "+s+"!"), res, "input %q", s)
		} else {
			assert.Equal(t, Failure(InvalidNameMessage), res, "input %q", s)
		}
	}
}

func TestValidateConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if (i+j)%2 == 0 {
					assert.True(t, Validate("Grace Hopper").IsSuccess())
				} else {
					assert.False(t, Validate("<img src=x>").IsSuccess())
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestGreetMatchesValidate(t *testing.T) {
	assert.Equal(t, Validate("Raphael"), Greet("Raphael"))
	assert.Equal(t, Validate("1"), Greet("1"))
}
