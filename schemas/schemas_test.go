package schemas

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestWorkerProfileSchema_ValidJSON(t *testing.T) {
	data, err := os.ReadFile("worker_profile.schema.json")
	require.NoError(t, err, "should be able to read schema file")

	var v map[string]any
	require.NoError(t, json.Unmarshal(data, &v))
	assert.Equal(t, "WorkerProfile", v["title"])
}

func TestWorkerProfileSchema_Compiles(t *testing.T) {
	data, err := os.ReadFile("worker_profile.schema.json")
	require.NoError(t, err)

	_, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	assert.NoError(t, err, "schema should compile")
}
