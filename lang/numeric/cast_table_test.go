package numeric_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pschiffmann/minic/lang/numeric"
)

type castCase struct {
	Name  string  `yaml:"name"`
	From  string  `yaml:"from"`
	To    string  `yaml:"to"`
	Input float64 `yaml:"input"`
	Want  float64 `yaml:"want"`
}

type castFixture struct {
	Cases []castCase `yaml:"cases"`
}

func typeByName(name string) (numeric.Type, error) {
	for _, t := range numeric.All {
		if t.String() == name {
			return t, nil
		}
	}
	return numeric.Type{}, fmt.Errorf("no such numeric.Type: %q", name)
}

// TestCastTable drives numeric.Cast from the property table in
// testdata/cast_cases.yaml, covering truncation, sign/zero extension and
// float<->integer conversion across the ten scalar types in one data-driven
// pass instead of one hand-written case per conversion direction.
func TestCastTable(t *testing.T) {
	data, err := os.ReadFile("testdata/cast_cases.yaml")
	require.NoError(t, err)

	var fixture castFixture
	require.NoError(t, yaml.Unmarshal(data, &fixture))
	require.NotEmpty(t, fixture.Cases)

	for _, c := range fixture.Cases {
		c := c
		t.Run(c.Name, func(t *testing.T) {
			from, err := typeByName(c.From)
			require.NoError(t, err)
			to, err := typeByName(c.To)
			require.NoError(t, err)

			var n numeric.Number
			if from.IsFloat() {
				n = numeric.FromFloat64(from, c.Input)
			} else {
				n = numeric.FromInt64(from, int64(c.Input))
			}

			got := numeric.Cast(n, to)
			if to.IsFloat() {
				assert.Equal(t, c.Want, got.Float64())
			} else {
				assert.Equal(t, int64(c.Want), got.Int64())
			}
		})
	}
}
