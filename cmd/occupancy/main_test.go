package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"occupancy/config"
	"occupancy/ml"
)

func artifact(t *testing.T, name string) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "artifacts", name))
	require.NoError(t, err)
	return path
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	body := "model:\n" +
		"  path: " + artifact(t, "model.json") + "\n" +
		"  schema_path: " + artifact(t, "feature_order.json") + "\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBuildPredictorFromArtifacts(t *testing.T) {
	cfg := config.Default()
	cfg.Model.Path = artifact(t, "model.json")
	cfg.Model.SchemaPath = artifact(t, "feature_order.json")

	predictor, err := buildPredictor(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"Occupied", "Vacant"}, predictor.Labels())
	assert.Len(t, predictor.Schema().Groups(), 3)
}

func TestBuildPredictorRejectsIncompleteSchema(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "feature_order.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`["KWH","state_postal_CA","BA_climate_Marine"]`), 0o600))

	cfg := config.Default()
	cfg.Model.Path = artifact(t, "model.json")
	cfg.Model.SchemaPath = schemaPath

	_, err := buildPredictor(cfg, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, ml.ErrSchemaLoad)
	assert.Contains(t, err.Error(), "IECC_climate_code_")
}

func TestBuildPredictorRejectsMismatchedModel(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "feature_order.json")
	require.NoError(t, os.WriteFile(schemaPath,
		[]byte(`["KWH","state_postal_CA","BA_climate_Marine","IECC_climate_code_4C"]`), 0o600))

	cfg := config.Default()
	cfg.Model.Path = artifact(t, "model.json")
	cfg.Model.SchemaPath = schemaPath

	_, err := buildPredictor(cfg, zap.NewNop())
	assert.ErrorIs(t, err, ml.ErrSchemaLoad)
}

func TestPredictCommand(t *testing.T) {
	out, err := execute(t, "predict", "--config", writeTestConfig(t),
		"--state", "CA", "--climate", "Marine", "--iecc", "4C",
		"--set", "KWH=2000,BEDROOMS=3")
	require.NoError(t, err)

	var result struct {
		Label        string  `json:"label"`
		Probability  float64 `json:"probability"`
		Inconclusive bool    `json:"inconclusive"`
		Message      string  `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "Occupied", result.Label)
	assert.InDelta(t, 2840.0/3000.0, result.Probability, 1e-9)
	assert.False(t, result.Inconclusive)
	assert.Equal(t, "Occupied", result.Message)
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema", "--config", writeTestConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "85 features")
	assert.Contains(t, out, "climate [BA_climate_]: Cold, Hot-Dry")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "occupancy dev\n", out)
}
