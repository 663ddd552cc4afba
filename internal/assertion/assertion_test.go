package assertion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/seo-detector/internal/assertion"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		want    assertion.Predicate
		wantErr bool
	}{
		{
			name: "property",
			path: "to.have.property",
			want: assertion.Predicate{Kind: assertion.HasProperty},
		},
		{
			name: "length below",
			path: "length.to.be.below",
			want: assertion.Predicate{Kind: assertion.LengthBelow},
		},
		{
			name: "subset",
			path: "to.containSubset",
			want: assertion.Predicate{Kind: assertion.ContainsSubset},
		},
		{
			name: "negated subset",
			path: "to.not.containSubset",
			want: assertion.Predicate{Kind: assertion.ContainsSubset, Negate: true},
		},
		{
			name: "surrounding whitespace",
			path: "  to.eql ",
			want: assertion.Predicate{Kind: assertion.Equals},
		},
		{
			name:    "unknown predicate",
			path:    "invalid_assertion",
			wantErr: true,
		},
		{
			name:    "unknown chain",
			path:    "length.to.be.tiny",
			wantErr: true,
		},
		{
			name:    "empty",
			path:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := assertion.Resolve(tt.path)
			if tt.wantErr {
				require.ErrorIs(t, err, assertion.ErrInvalidAssertion)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	head := []any{
		map[string]any{"type": "tag", "name": "title", "attribs": map[string]any{}},
		map[string]any{"type": "tag", "name": "meta", "attribs": map[string]any{"name": "description", "content": "x"}},
	}

	tests := []struct {
		name     string
		subject  any
		path     string
		expected any
		want     assertion.Outcome
	}{
		{
			name:     "attribute present",
			subject:  map[string]any{"alt": ""},
			path:     "to.have.property",
			expected: "alt",
			want:     assertion.Satisfied,
		},
		{
			name:     "attribute missing",
			subject:  map[string]any{},
			path:     "to.have.property",
			expected: "alt",
			want:     assertion.NotSatisfied,
		},
		{
			name:     "string attribute map",
			subject:  map[string]string{"rel": "nofollow"},
			path:     "to.have.property",
			expected: "rel",
			want:     assertion.Satisfied,
		},
		{
			name:     "negated property",
			subject:  map[string]any{"style": "x"},
			path:     "to.not.have.property",
			expected: "style",
			want:     assertion.NotSatisfied,
		},
		{
			name:     "property name must be a string",
			subject:  map[string]any{},
			path:     "to.have.property",
			expected: 3,
			want:     assertion.Malformed,
		},
		{
			name:     "length below with int bound",
			subject:  make([]any, 15),
			path:     "length.to.be.below",
			expected: 16,
			want:     assertion.Satisfied,
		},
		{
			name:     "length below with float bound",
			subject:  make([]any, 16),
			path:     "length.to.be.below",
			expected: float64(16),
			want:     assertion.NotSatisfied,
		},
		{
			name:     "length above",
			subject:  []string{"a", "b"},
			path:     "length.to.be.above",
			expected: 1,
			want:     assertion.Satisfied,
		},
		{
			name:     "length at most",
			subject:  []any{1, 2},
			path:     "length.to.be.at.most",
			expected: 2,
			want:     assertion.Satisfied,
		},
		{
			name:     "length at least",
			subject:  []any{1},
			path:     "length.to.be.at.least",
			expected: 2,
			want:     assertion.NotSatisfied,
		},
		{
			name:     "length of mapping",
			subject:  map[string]any{"a": 1, "b": 2},
			path:     "to.have.lengthOf",
			expected: 2,
			want:     assertion.Satisfied,
		},
		{
			name:     "length bound must be numeric",
			subject:  []any{},
			path:     "length.to.be.below",
			expected: "three",
			want:     assertion.Malformed,
		},
		{
			name:     "subject without length",
			subject:  true,
			path:     "length.to.be.below",
			expected: 3,
			want:     assertion.Malformed,
		},
		{
			name:     "subset matches title",
			subject:  head,
			path:     "to.containSubset",
			expected: []any{map[string]any{"name": "title"}},
			want:     assertion.Satisfied,
		},
		{
			name:     "subset matches nested attribs",
			subject:  head,
			path:     "to.containSubset",
			expected: []any{map[string]any{"name": "meta", "attribs": map[string]any{"name": "description"}}},
			want:     assertion.Satisfied,
		},
		{
			name:     "subset misses keywords",
			subject:  head,
			path:     "to.containSubset",
			expected: []any{map[string]any{"name": "meta", "attribs": map[string]any{"name": "keywords"}}},
			want:     assertion.NotSatisfied,
		},
		{
			name:    "every template entry must match",
			subject: head,
			path:    "to.containSubset",
			expected: []any{
				map[string]any{"name": "title"},
				map[string]any{"name": "link"},
			},
			want: assertion.NotSatisfied,
		},
		{
			name:     "subset against mapping subject",
			subject:  map[string]any{"name": "robots", "content": "noindex"},
			path:     "to.containSubset",
			expected: map[string]any{"name": "robots"},
			want:     assertion.Satisfied,
		},
		{
			name:     "list template against mapping subject",
			subject:  map[string]any{"name": "robots"},
			path:     "to.containSubset",
			expected: []any{map[string]any{"name": "robots"}},
			want:     assertion.NotSatisfied,
		},
		{
			name:     "deep equality normalises numbers",
			subject:  map[string]any{"a": []any{1, 2}},
			path:     "to.deep.equal",
			expected: map[string]any{"a": []any{float64(1), float64(2)}},
			want:     assertion.Satisfied,
		},
		{
			name:     "negated equality",
			subject:  "x",
			path:     "to.not.equal",
			expected: "x",
			want:     assertion.NotSatisfied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := assertion.Evaluate(tt.subject, tt.path, tt.expected)
			assert.Equal(t, tt.want, got)
			if tt.want == assertion.Malformed {
				require.ErrorIs(t, err, assertion.ErrInvalidAssertion)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEvaluateUnknownPath(t *testing.T) {
	t.Parallel()

	got, err := assertion.Evaluate([]any{}, "to.be.shiny", true)
	require.ErrorIs(t, err, assertion.ErrInvalidAssertion)
	assert.Equal(t, assertion.Malformed, got)
	assert.Contains(t, err.Error(), "to.be.shiny")
}

func TestPathsSorted(t *testing.T) {
	t.Parallel()

	paths := assertion.Paths()
	require.NotEmpty(t, paths)
	assert.IsNonDecreasing(t, paths)
	assert.Contains(t, paths, "to.containSubset")
}
