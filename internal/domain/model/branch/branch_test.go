package branch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestContext_EncodesEmptyNamesAsNull(t *testing.T) {
	c := Unmatched("", MatchStatusMissing)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"branchName":null,"featureFolderName":null,"matchStatus":"missing"}`, string(data))

	out, err := yaml.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, "branchName: null\nfeatureFolderName: null\nmatchStatus: missing\n", string(out))
}

func TestContext_EncodesNames(t *testing.T) {
	c := Context{BranchName: "001-first", FeatureFolderName: "001-first", MatchStatus: MatchStatusMatched}

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"branchName":"001-first","featureFolderName":"001-first","matchStatus":"matched"}`, string(data))

	var back Context
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, c, back)

	var fromNull Context
	require.NoError(t, json.Unmarshal([]byte(`{"branchName":null,"featureFolderName":null,"matchStatus":"missing"}`), &fromNull))
	assert.Equal(t, Unmatched("", MatchStatusMissing), fromNull)
}

func TestContext_AmbiguousKeepsBranchName(t *testing.T) {
	out, err := yaml.Marshal(Unmatched("001-first", MatchStatusAmbiguous))
	require.NoError(t, err)
	assert.Equal(t, "branchName: 001-first\nfeatureFolderName: null\nmatchStatus: ambiguous\n", string(out))
}
