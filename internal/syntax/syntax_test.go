package syntax

import (
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckValidSources(t *testing.T) {
	v := NewValidator()

	testCases := map[string]string{
		"statement":  "console.log(1)",
		"empty":      "",
		"cloud func": "Moralis.Cloud.define(\"hello\", async (request) => {\n  return \"world\";\n});\n",
		"require":    "const _ = require('lodash');\nmodule.exports = _.noop;\n",
		"class":      "class A { #x = 1; get x() { return this.#x } }",
	}

	for name, src := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, v.Check("cloud/"+name+".js", []byte(src)))
		})
	}
}

func TestCheckMissingClosingBrace(t *testing.T) {
	v := NewValidator()

	src := "function broken() {\n  console.log(1)\n"
	se := v.Check("cloud/a.js", []byte(src))
	require.NotNil(t, se)

	assert.Equal(t, "cloud/a.js", se.File)
	assert.NotEmpty(t, se.Message)
	assert.GreaterOrEqual(t, se.Line, 1)
	assert.Contains(t, se.Error(), "cloud/a.js:")
}

func TestCheckReportsLocation(t *testing.T) {
	v := NewValidator()

	se := v.Check("b.js", []byte("let ok = 1;\nlet x = ;\n"))
	require.NotNil(t, se)

	assert.Equal(t, 2, se.Line)
	assert.Equal(t, "let x = ;", se.LineText)
}

func TestCheckUsesExtensionLoader(t *testing.T) {
	v := NewValidator()
	src := []byte("const n: number = 1;\n")

	assert.Nil(t, v.Check("typed.ts", src))
	assert.NotNil(t, v.Check("typed.js", src))
}

func TestLoaderFor(t *testing.T) {
	assert.Equal(t, api.LoaderJS, loaderFor("a.js"))
	assert.Equal(t, api.LoaderJS, loaderFor("a.mjs"))
	assert.Equal(t, api.LoaderTS, loaderFor("a.TS"))
	assert.Equal(t, api.LoaderJSX, loaderFor("a.jsx"))
	assert.Equal(t, api.LoaderTSX, loaderFor("a.tsx"))
}
