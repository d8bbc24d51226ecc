package quiz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mathathon/mathathon-server/internal/quiz"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Trigonometry":        "trigonometry",
		"Number Theory":       "number-theory",
		"Algebra & Functions": "algebra-functions",
		"  Vectors 3D  ":      "vectors-3d",
		"---":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, quiz.Slugify(in), "input %q", in)
	}
}
