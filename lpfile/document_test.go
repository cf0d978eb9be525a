package lpfile

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/simplex/simplex"
	"github.com/wyfcoding/simplex/xerrors"
)

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		path      string
		name      string
		sense     simplex.Sense
		relations []simplex.Relation
	}{
		{"testdata/reference.toml", "reference", simplex.Maximize, nil},
		{"testdata/mixed.yaml", "mixed", simplex.Maximize, []simplex.Relation{simplex.GE, simplex.LE, simplex.EQ}},
		{"testdata/budget.json", "budget", simplex.Minimize, []simplex.Relation{simplex.GE, simplex.LE}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			doc, err := Load(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.name, doc.Name)

			p, err := doc.Problem()
			require.NoError(t, err)
			assert.Equal(t, tt.sense, p.Sense)
			assert.Equal(t, tt.relations, p.Relations)
			assert.Len(t, p.Constraints, len(p.RHS))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/nope.toml")
	require.Error(t, err)
	assert.True(t, xerrors.IsType(err, xerrors.ErrInvalidArg))
}

func TestDecodeJSON(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"objective":[1,1],"constraints":[[0,1]],"rhs":[5],"bounds":[{"var":0,"upper":3}]}`), "json")
	require.NoError(t, err)

	p, err := doc.Problem()
	require.NoError(t, err)
	assert.Equal(t, []float64{3, math.Inf(1)}, p.UpperBounds)

	_, err = Decode(strings.NewReader(`{"objective":`), "json")
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestProblemBounds(t *testing.T) {
	doc := &Document{
		Objective: []float64{1, 1},
		Variables: []string{"a", "b"},
		Bounds:    []Bound{{Name: "b", Upper: 4}, {Name: "b", Upper: 2}, {Var: 0, Upper: 9}},
	}
	p, err := doc.Problem()
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 2}, p.UpperBounds)

	doc.Bounds = []Bound{{Name: "c", Upper: 1}}
	_, err = doc.Problem()
	assert.True(t, errors.Is(err, ErrBadBound))

	doc.Bounds = []Bound{{Var: 5, Upper: 1}}
	_, err = doc.Problem()
	assert.True(t, errors.Is(err, ErrBadBound))
}

func TestProblemErrors(t *testing.T) {
	_, err := (&Document{Objective: []float64{1}, Sense: "sideways"}).Problem()
	assert.True(t, errors.Is(err, xerrors.ErrUnknownSense))

	_, err = (&Document{Objective: []float64{1}, Constraints: [][]float64{{1}}, RHS: []float64{1}, Relations: []string{"<>"}}).Problem()
	assert.True(t, errors.Is(err, xerrors.ErrUnknownRelation))

	_, err = (&Document{Objective: []float64{1, 2}, Variables: []string{"a"}}).Problem()
	assert.True(t, errors.Is(err, ErrBadVariables))

	_, err = (&Document{Objective: []float64{1, 2}, Variables: []string{"a", "a"}}).Problem()
	assert.True(t, errors.Is(err, ErrBadVariables))

	_, err = (&Document{Objective: []float64{1, 2}, Constraints: [][]float64{{1}}, RHS: []float64{1}}).Problem()
	assert.True(t, errors.Is(err, xerrors.ErrRaggedRow))

	_, err = (&Document{}).Problem()
	assert.True(t, errors.Is(err, xerrors.ErrEmptyObjective))
}

func TestRender(t *testing.T) {
	doc, err := Load("testdata/reference.toml")
	require.NoError(t, err)
	p, err := doc.Problem()
	require.NoError(t, err)
	sol, err := simplex.Solve(p)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, doc, sol))
	assert.Equal(t, "problem: reference\nstatus: OPTIMAL\nobjective: 36\npivots: 2\ndoors = 2\nwindows = 6\n", buf.String())
}

func TestRenderNonOptimal(t *testing.T) {
	doc, err := Load("testdata/budget.json")
	require.NoError(t, err)
	p, err := doc.Problem()
	require.NoError(t, err)
	sol, err := simplex.Solve(p)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, doc, sol))
	assert.Equal(t, "problem: budget\nstatus: INFEASIBLE\n", buf.String())
}

func TestRenderRoundsAndNames(t *testing.T) {
	doc := &Document{Objective: []float64{2, 3}}
	sol := &simplex.Solution{Status: simplex.Optimal, Objective: 41.0 / 3, Values: []float64{10.0 / 3, 7.0 / 3}, Pivots: 3}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, doc, sol))
	assert.Equal(t, "status: OPTIMAL\nobjective: 13.666667\npivots: 3\nx1 = 3.333333\nx2 = 2.333333\n", buf.String())
	assert.Equal(t, "0", Format6(1e-12))
}
