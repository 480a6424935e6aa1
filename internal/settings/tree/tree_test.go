package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "superadmin/pkg/domain-errors"
)

const doc = `{"zeta":{"enabled":true,"limit":10,"ratio":0.25},"alpha":["a","b"],"note":null,"nested":{"deep":{"label":"x"}},"empty":{}}`

func TestParsePreservesKeyOrder(t *testing.T) {
	n, err := Parse([]byte(doc))
	require.NoError(t, err)

	var keys []string
	for _, f := range n.Fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"zeta", "alpha", "note", "nested", "empty"}, keys)

	out, err := n.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, doc, string(out))
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{``, `{`, `{"a":1} {}`, `[1,]`, `tru`} {
		_, err := Parse([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestLeavesInDocumentOrder(t *testing.T) {
	n, err := Parse([]byte(doc))
	require.NoError(t, err)

	var names []string
	for _, l := range n.Leaves() {
		names = append(names, l.Name())
	}
	assert.Equal(t, []string{
		"/zeta/enabled", "/zeta/limit", "/zeta/ratio",
		"/alpha/0", "/alpha/1",
		"/note",
		"/nested/deep/label",
	}, names)
	assert.Equal(t, "zeta / limit", n.Leaves()[1].Label())
}

func TestPathEncodingRoundTrip(t *testing.T) {
	cases := [][]string{nil, {""}, {"a/b", "c d"}, {"%", "0"}}
	for _, path := range cases {
		got, err := DecodePath(EncodePath(path))
		require.NoError(t, err)
		assert.Equal(t, path, got)
	}
	_, err := DecodePath("no-slash")
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	base, err := Parse([]byte(doc))
	require.NoError(t, err)

	t.Run("edits one leaf and leaves siblings alone", func(t *testing.T) {
		out, err := base.Apply(map[string]string{"/zeta/limit": "25"})
		require.NoError(t, err)

		raw, err := out.MarshalJSON()
		require.NoError(t, err)
		assert.JSONEq(t, `{"zeta":{"enabled":true,"limit":25,"ratio":0.25},"alpha":["a","b"],"note":null,"nested":{"deep":{"label":"x"}},"empty":{}}`, string(raw))
	})

	t.Run("does not modify the original", func(t *testing.T) {
		_, err := base.Apply(map[string]string{"/alpha/1": "changed", "/nested/deep/label": "y"})
		require.NoError(t, err)

		raw, err := base.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, doc, string(raw))
	})

	t.Run("leaves keep their kind", func(t *testing.T) {
		out, err := base.Apply(map[string]string{"/zeta/enabled": "false", "/alpha/0": "42"})
		require.NoError(t, err)

		leaves := out.Leaves()
		assert.Equal(t, KindBool, leaves[0].Node.Kind)
		assert.False(t, leaves[0].Node.Bool)
		assert.Equal(t, KindString, leaves[3].Node.Kind)
		assert.Equal(t, "42", leaves[3].Node.Text)
	})

	t.Run("rejects values of the wrong kind", func(t *testing.T) {
		for name, value := range map[string]string{
			"/zeta/limit":   "ten",
			"/zeta/ratio":   "NaN",
			"/zeta/enabled": "yes",
			"/note":         "something",
			"/zeta":         "{}",
		} {
			_, err := base.Apply(map[string]string{name: value})
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), name)
		}
	})

	t.Run("rejects unknown paths", func(t *testing.T) {
		for _, name := range []string{"/missing", "/alpha/9", "/alpha/x", "/zeta/limit/deeper"} {
			_, err := base.Apply(map[string]string{name: "1"})
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), name)
		}
	})

	t.Run("root scalar", func(t *testing.T) {
		n, err := Parse([]byte(`7`))
		require.NoError(t, err)

		out, err := n.Apply(map[string]string{"": " 8.5 "})
		require.NoError(t, err)
		raw, _ := out.MarshalJSON()
		assert.Equal(t, "8.5", string(raw))
		assert.Equal(t, "value", out.Leaves()[0].Label())
	})
}

func TestMarshalKeepsHTMLCharacters(t *testing.T) {
	n, err := Parse([]byte(`{"tpl":"<b>&</b>"}`))
	require.NoError(t, err)
	raw, err := n.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"tpl":"<b>&</b>"}`, string(raw))
}

func TestPretty(t *testing.T) {
	n, err := Parse([]byte(`{"b":1,"a":[true]}`))
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"b\": 1,\n    \"a\": [\n        true\n    ]\n}", n.Pretty())
}
