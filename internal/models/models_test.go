package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to ApplicationStatus
		want     bool
	}{
		{ApplicationStatusDraft, ApplicationStatusSubmitted, true},
		{ApplicationStatusSubmitted, ApplicationStatusApproved, true},
		{ApplicationStatusSubmitted, ApplicationStatusRejected, true},
		{ApplicationStatusDraft, ApplicationStatusApproved, false},
		{ApplicationStatusSubmitted, ApplicationStatusSubmitted, false},
		{ApplicationStatusSubmitted, ApplicationStatusDraft, false},
		{ApplicationStatusApproved, ApplicationStatusRejected, false},
		{ApplicationStatusRejected, ApplicationStatusSubmitted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, ApplicationStatusApproved.IsFinal())
	assert.True(t, ApplicationStatusRejected.IsFinal())
	assert.False(t, ApplicationStatusDraft.IsFinal())
	assert.False(t, IsValidApplicationStatus("pending"))
	assert.True(t, IsValidApplicationStatus("draft"))
}

func TestComposeFullName(t *testing.T) {
	middle, blank := " Wanjiru ", "  "
	assert.Equal(t, "Amina Wanjiru Otieno", ComposeFullName("Amina", &middle, "Otieno"))
	assert.Equal(t, "Amina Otieno", ComposeFullName(" Amina", &blank, "Otieno "))
	assert.Equal(t, "Amina Otieno", ComposeFullName("Amina", nil, "Otieno"))
}

func TestJSONMap(t *testing.T) {
	var nilMap JSONMap
	v, err := nilMap.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = JSONMap{"licence": "PPL"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"licence":"PPL"}`, v)

	var m JSONMap
	require.NoError(t, m.Scan([]byte(`{"step":2,"medical":{"class":1}}`)))
	assert.Equal(t, json.Number("2"), m["step"])
	assert.Equal(t, map[string]interface{}{"class": json.Number("1")}, m["medical"])

	require.NoError(t, m.Scan(nil))
	assert.Nil(t, m)

	require.NoError(t, m.Scan(`{"a":"b"}`))
	assert.Equal(t, "b", m["a"])

	assert.Error(t, m.Scan(42))
	assert.Error(t, m.Scan([]byte(`[1,2]`)))
}

func TestJSONMap_LargeIntegersSurviveRoundTrip(t *testing.T) {
	raw := `{"licence_no":9007199254740993,"hours":[12.5,1e3],"medical":{"cert":123456789012345678}}`

	var scanned JSONMap
	require.NoError(t, scanned.Scan([]byte(raw)))
	out, err := json.Marshal(scanned)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
	assert.Contains(t, string(out), "9007199254740993")

	var bound JSONMap
	require.NoError(t, json.Unmarshal([]byte(raw), &bound))
	v, err := bound.Value()
	require.NoError(t, err)
	assert.Contains(t, v, "123456789012345678")

	var nilled JSONMap
	require.NoError(t, json.Unmarshal([]byte(`null`), &nilled))
	assert.Nil(t, nilled)
	assert.Error(t, json.Unmarshal([]byte(`"text"`), &bound))
}
