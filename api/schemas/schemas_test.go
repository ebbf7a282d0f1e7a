package schemas_test

import (
	"reflect"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/stylebox/api/schemas"
)

// TestStructJSONTags pins the output contract of the report types.
func TestStructJSONTags(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name         string
		structRef    interface{}
		expectedTags map[string]string
	}{
		{
			name:      "BoxReport",
			structRef: schemas.BoxReport{},
			expectedTags: map[string]string{
				"Version":   "version",
				"ContextID": "context_id",
				"Document":  "document,omitempty",
				"Viewport":  "viewport",
				"CreatedAt": "created_at",
				"Elements":  "elements",
			},
		},
		{
			name:      "ElementReport",
			structRef: schemas.ElementReport{},
			expectedTags: map[string]string{
				"Path":      "path",
				"Tag":       "tag,omitempty",
				"ID":        "id,omitempty",
				"Text":      "text,omitempty",
				"Depth":     "depth",
				"Rect":      "rect",
				"Content":   "content",
				"Margin":    "margin",
				"Border":    "border",
				"Padding":   "padding",
				"Draw":      "draw",
				"Fragments": "fragments,omitempty",
			},
		},
		{
			name:      "Diagnostic",
			structRef: schemas.Diagnostic{},
			expectedTags: map[string]string{
				"Line":    "line",
				"Kind":    "kind",
				"Message": "message",
			},
		},
	}

	for _, tc := range testCases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			structType := reflect.TypeOf(tt.structRef)
			actualTags := make(map[string]string)
			for i := 0; i < structType.NumField(); i++ {
				field := structType.Field(i)
				if jsonTag := field.Tag.Get("json"); jsonTag != "" {
					actualTags[field.Name] = jsonTag
				}
			}
			assert.Equal(t, tt.expectedTags, actualTags, "JSON tags for struct %s do not match expectations", tt.name)
		})
	}
}

func TestElementReportOmitsEmptyFields(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(schemas.ElementReport{Path: "div", Draw: schemas.Draw{Visible: true, Opacity: 1}})
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"tag", "id", "text", "fragments"} {
		assert.NotContains(t, raw, key)
	}
	draw := raw["draw"].(map[string]interface{})
	assert.NotContains(t, draw, "z_index")
	assert.Equal(t, true, draw["visible"])
}
