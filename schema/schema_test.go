package schema

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilders(t *testing.T) {
	assert.Equal(t, TypeSet{"string"}, String().Type)
	assert.Equal(t, TypeSet{"integer"}, Int().Type)
	assert.Equal(t, TypeSet{"number"}, Number().Type)
	assert.Equal(t, TypeSet{"boolean"}, Bool().Type)
	assert.Empty(t, Any().Type)

	arr := Array(String())
	require.NotNil(t, arr.Items)
	assert.Equal(t, TypeSet{"string"}, arr.Items.Type)

	obj := Object(map[string]JSON{"name": String()}, "name")
	assert.Equal(t, TypeSet{"object"}, obj.Type)
	assert.Equal(t, []string{"name"}, obj.Required)

	assert.Equal(t, "#/definitions/Sword", Ref("Sword").Ref)
	assert.Equal(t, "fire", Const("fire").Const)
}

func TestTypeSetMarshal(t *testing.T) {
	tests := []struct {
		name string
		set  TypeSet
		want string
	}{
		{
			name: "single type as string",
			set:  TypeSet{"object"},
			want: `"object"`,
		},
		{
			name: "multiple types as array",
			set:  TypeSet{"object", "null"},
			want: `["object","null"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.set)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var back TypeSet
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.set, back)
		})
	}
}

func TestNullable(t *testing.T) {
	s := String().Nullable()
	assert.Equal(t, TypeSet{"string", "null"}, s.Type)

	// Referenced schemas keep the $ref and widen the accepted types.
	r := Ref("Sword").Nullable()
	assert.Equal(t, "#/definitions/Sword", r.Ref)
	assert.Equal(t, TypeSet{"object", "null"}, r.Type)

	// Already nullable stays unchanged.
	assert.Equal(t, TypeSet{"string", "null"}, s.Nullable().Type)
}

func TestRenderOmitsEmptyKeywords(t *testing.T) {
	out, err := Object(map[string]JSON{"name": String()}, "name").Render()
	require.NoError(t, err)

	assert.Contains(t, out, `"type": "object"`)
	assert.NotContains(t, out, "oneOf")
	assert.NotContains(t, out, "definitions")
	assert.NotContains(t, out, "$comment")
}
