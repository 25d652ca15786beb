package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ingredientRecord struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

var ingredientSchema = Schema{
	Shape: ShapeArray,
	Fields: []Field{
		{Name: "name", Kind: KindString, Required: true},
		{Name: "confidence", Kind: KindNumber},
	},
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "no fence", raw: `  [1,2]  `, want: `[1,2]`},
		{name: "json tag", raw: "```json\n[1,2]\n```", want: `[1,2]`},
		{name: "upper case tag", raw: "```JSON\n[1,2]\n```", want: `[1,2]`},
		{name: "bare fence", raw: "```\n[1,2]\n```", want: `[1,2]`},
		{name: "single line fence", raw: "```json[1,2]```", want: `[1,2]`},
		{name: "unterminated fence", raw: "```json\n[1,2]", want: `[1,2]`},
		{name: "surrounding whitespace", raw: "\n\t```json\n{\"a\":1}\n```\n", want: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.raw))
		})
	}
}

func TestDecodeArrayFenceVariants(t *testing.T) {
	body := `[{"name":"tomato","confidence":0.9},{"name":"egg","confidence":0.7}]`
	want := []ingredientRecord{{Name: "tomato", Confidence: 0.9}, {Name: "egg", Confidence: 0.7}}

	for name, raw := range map[string]string{
		"with language tag":    "```json\n" + body + "\n```",
		"without language tag": "```\n" + body + "\n```",
		"no fence":             body,
	} {
		t.Run(name, func(t *testing.T) {
			got, dropped, err := DecodeArray[ingredientRecord](raw, ingredientSchema)
			require.NoError(t, err)
			assert.Zero(t, dropped)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeArrayParseFailure(t *testing.T) {
	for _, raw := range []string{
		"",
		"I see a tomato and an egg.",
		"```json\n[{\"name\":\"tomato\",}]\n```",
		`[{"name":"tomato"}`,
	} {
		t.Run(raw, func(t *testing.T) {
			_, _, err := DecodeArray[ingredientRecord](raw, ingredientSchema)
			require.Error(t, err)

			var pf *ParseFailure
			require.True(t, errors.As(err, &pf))
			assert.Equal(t, raw, pf.Text)

			var upErr *UpstreamError
			var cfgErr *ConfigurationError
			assert.False(t, errors.As(err, &upErr))
			assert.False(t, errors.As(err, &cfgErr))
		})
	}
}

func TestDecodeArrayWrongShapeIsEmpty(t *testing.T) {
	got, dropped, err := DecodeArray[ingredientRecord](`{"ingredients":[{"name":"tomato"}]}`, ingredientSchema)

	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDecodeArrayDropsMalformedRecords(t *testing.T) {
	raw := `[
		{"name":"tomato","confidence":0.9},
		{"confidence":0.8},
		{"name":42},
		"onion",
		{"name":"egg","confidence":"high"},
		{"name":"basil","confidence":null}
	]`

	got, dropped, err := DecodeArray[ingredientRecord](raw, ingredientSchema)

	require.NoError(t, err)
	assert.Equal(t, 4, dropped)
	assert.Equal(t, []ingredientRecord{{Name: "tomato", Confidence: 0.9}, {Name: "basil"}}, got)
}

func TestDecodeArrayEmpty(t *testing.T) {
	got, dropped, err := DecodeArray[ingredientRecord]("[]", ingredientSchema)

	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Empty(t, got)
}

type detailRecord struct {
	Description  string   `json:"description"`
	Instructions []string `json:"instructions"`
}

var detailSchema = Schema{
	Shape: ShapeObject,
	Fields: []Field{
		{Name: "description", Kind: KindString},
		{Name: "instructions", Kind: KindArray, Required: true},
	},
}

func TestDecodeObject(t *testing.T) {
	got, err := DecodeObject[detailRecord]("```json\n{\"description\":\"Good.\",\"instructions\":[\"Cook.\"]}\n```", detailSchema)

	require.NoError(t, err)
	assert.Equal(t, detailRecord{Description: "Good.", Instructions: []string{"Cook."}}, got)
}

func TestDecodeObjectWrongShapeIsZero(t *testing.T) {
	got, err := DecodeObject[detailRecord](`["Cook."]`, detailSchema)

	require.NoError(t, err)
	assert.Equal(t, detailRecord{}, got)
}

func TestDecodeObjectSchemaViolation(t *testing.T) {
	_, err := DecodeObject[detailRecord](`{"description":"Good."}`, detailSchema)

	var pf *ParseFailure
	require.True(t, errors.As(err, &pf))
	assert.Contains(t, pf.Error(), "instructions")
}

func TestSchemaCheck(t *testing.T) {
	schema := Schema{Fields: []Field{
		{Name: "s", Kind: KindString, Required: true},
		{Name: "n", Kind: KindNumber},
		{Name: "b", Kind: KindBool},
		{Name: "o", Kind: KindObject},
	}}

	assert.NoError(t, schema.Check([]byte(`{"s":"x","n":1.5,"b":false,"o":{}}`)))
	assert.NoError(t, schema.Check([]byte(`{"s":"x","n":null}`)))
	assert.Error(t, schema.Check([]byte(`{"n":1}`)))
	assert.Error(t, schema.Check([]byte(`{"s":"x","b":"yes"}`)))
	assert.Error(t, schema.Check([]byte(`{"s":"x","o":[]}`)))
	assert.Error(t, schema.Check([]byte(`[]`)))
}
