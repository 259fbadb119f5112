package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionUnmarshalJSONBothShapes(t *testing.T) {
	var opts []Option
	require.NoError(t, json.Unmarshal([]byte(`["INGRAM", {"value":"TD_SYNNEX","label":"TD Synnex"}, {"value":"ARROW"}]`), &opts))
	require.Len(t, opts, 3)

	assert.Equal(t, Option{Value: "INGRAM", Label: "INGRAM", Kind: OptionKindString}, opts[0])
	assert.Equal(t, Option{Value: "TD_SYNNEX", Label: "TD Synnex", Kind: OptionKindLabeled}, opts[1])
	assert.Equal(t, "ARROW", opts[2].Label)
}

func TestOptionUnmarshalJSONRejectsBadShapes(t *testing.T) {
	var opt Option
	assert.Error(t, json.Unmarshal([]byte(`{"label":"no value"}`), &opt))
	assert.Error(t, json.Unmarshal([]byte(`42`), &opt))
}

func TestOptionMarshalsCanonicalShape(t *testing.T) {
	raw, err := json.Marshal(StringOption("PENDING"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"PENDING","label":"PENDING"}`, string(raw))
}

func TestNormalizeOptions(t *testing.T) {
	opts, err := NormalizeOptions([]interface{}{
		"MICROSOFT",
		map[string]interface{}{"value": "ARROW", "label": "Arrow"},
	})
	require.NoError(t, err)
	assert.Equal(t, []Option{StringOption("MICROSOFT"), LabeledOption("ARROW", "Arrow")}, opts)

	_, err = NormalizeOptions([]interface{}{int64(3)})
	assert.Error(t, err)
	_, err = NormalizeOption(map[string]interface{}{"label": "x"})
	assert.Error(t, err)
}
