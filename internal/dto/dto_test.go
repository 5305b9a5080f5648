package dto_test

import (
	"testing"

	"github.com/aretw0/swallow/internal/dto"
	"github.com/aretw0/swallow/pkg/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `
projects:
  - name: Core
    documents:
      - path: core/repo.src
        types:
          - name: IRepo
            kind: interface
            members:
              - method: {name: Load, returns: int, params: [{name: key, type: string}]}
          - name: Repo
            interfaces: [IRepo]
            members:
              - field: {name: Label, type: string, init: {nameof: Load}}
              - method:
                  name: Load
                  modifiers: [public]
                  returns: int
                  params: [{name: key, type: string}]
                  body:
                    - return: {call: {target: this.Fetch, args: [{ident: key}, {literal: 42}], leading: "/* f */ "}}
              - method:
                  name: Fetch
                  returns: Task<int>
                  params: [{name: key, type: string}, {name: n, type: int}]
                  body:
                    - expr: {await: {call: {target: Ping, trailing: " /* p */"}}}
                    - return: {}
`

func TestDecodeManifest_ToFile(t *testing.T) {
	m, err := dto.DecodeManifest([]byte(manifest))
	require.NoError(t, err)
	require.Len(t, m.Projects, 1)
	require.Len(t, m.Projects[0].Documents, 1)

	f, err := dto.ToFile(m.Projects[0].Documents[0])
	require.NoError(t, err)
	text := syntax.Format(f)

	assert.Contains(t, text, "interface IRepo {\n    int Load(string key);\n}")
	assert.Contains(t, text, "class Repo : IRepo {")
	assert.Contains(t, text, "    string Label = nameof(Load);")
	assert.Contains(t, text, "return /* f */ this.Fetch(key, 42);")
	assert.Contains(t, text, "Task<int> Fetch(string key, int n) {")
	assert.Contains(t, text, "await Ping() /* p */;")
	assert.Contains(t, text, "        return;\n")
}

func TestEncodeManifest_RoundTrip(t *testing.T) {
	m, err := dto.DecodeManifest([]byte(manifest))
	require.NoError(t, err)
	f, err := dto.ToFile(m.Projects[0].Documents[0])
	require.NoError(t, err)
	want := syntax.Format(f)

	m.Projects[0].Documents[0] = dto.FromFile(f)
	data, err := dto.EncodeManifest(m)
	require.NoError(t, err)

	again, err := dto.DecodeManifest(data)
	require.NoError(t, err)
	g, err := dto.ToFile(again.Projects[0].Documents[0])
	require.NoError(t, err)
	assert.Equal(t, want, syntax.Format(g))
}

func TestDecodeManifest_Errors(t *testing.T) {
	_, err := dto.DecodeManifest([]byte("projects: [{name: A, colour: blue}]"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = dto.DecodeManifest([]byte("projects: ["))
	assert.Error(t, err)

	m, err := dto.DecodeManifest([]byte(`projects: [{name: A, documents: [{path: a.src, types: [{name: X, kind: struct}]}]}]`))
	require.NoError(t, err)
	_, err = dto.ToFile(m.Projects[0].Documents[0])
	assert.ErrorContains(t, err, "unknown kind")
}

func TestParseTypeRef(t *testing.T) {
	for in, want := range map[string]string{
		"":                                "void",
		"int":                             "int",
		"Task<int>":                       "Task<int>",
		"Dictionary<string, List<int> >": "Dictionary<string, List<int>>",
	} {
		got, err := dto.ParseTypeRef(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.String(), in)
	}
	for _, bad := range []string{"Task<int", "Task<>", "a b"} {
		_, err := dto.ParseTypeRef(bad)
		assert.Error(t, err, bad)
	}
}
