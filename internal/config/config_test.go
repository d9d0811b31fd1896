package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientID = "ea7f1422-2d20-4299-85a7-c1201e953409"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
client:
  id: "`+testClientID+`"

supabase:
  url: "https://test.supabase.co"
  service_key: "secret"
  timeout_seconds: 30

sources:
  contacts_file: "contacts.csv"
  leads_file: "leads.csv"
  marketing_cloud_file: "mc.csv"

merge:
  output_file: "merged.csv"

upload:
  batch_size: 250
  batch_delay_ms: 50

tags:
  page_size: 500
  batch_size: 100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, testClientID, cfg.Client.ID)
	assert.Equal(t, "https://test.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, 30, cfg.Supabase.TimeoutSeconds)
	assert.Equal(t, "contacts.csv", cfg.Sources.ContactsFile)
	assert.Equal(t, "merged.csv", cfg.Merge.OutputFile)
	// Upload input defaults to the merge output.
	assert.Equal(t, "merged.csv", cfg.Upload.InputFile)
	assert.Equal(t, 250, cfg.Upload.BatchSize)
	assert.Equal(t, 50, cfg.Upload.BatchDelayMS)
	assert.Equal(t, 500, cfg.Tags.PageSize)
	assert.Equal(t, 100, cfg.Tags.BatchSize)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
client:
  id: "`+testClientID+`"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Supabase.TimeoutSeconds)
	assert.Equal(t, "supabase_import_ready.csv", cfg.Merge.OutputFile)
	assert.Equal(t, "supabase_import_ready.csv", cfg.Upload.InputFile)
	assert.Equal(t, 500, cfg.Upload.BatchSize)
	assert.Equal(t, 100, cfg.Upload.BatchDelayMS)
	assert.Equal(t, 1000, cfg.Tags.PageSize)
	assert.Equal(t, 500, cfg.Tags.BatchSize)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	path := writeConfig(t, `
client:
  id: "`+testClientID+`"
supabase:
  url: "https://file.supabase.co"
  service_key: "from-file"
`)

	t.Setenv("SUPABASE_URL", "https://env.supabase.co")
	t.Setenv("SUPABASE_SERVICE_KEY", "from-env")

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, "from-env", cfg.Supabase.ServiceKey)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate(), "missing client id")

	cfg.Client.ID = "not-a-uuid"
	assert.Error(t, cfg.Validate(), "malformed client id")

	cfg.Client.ID = testClientID
	assert.NoError(t, cfg.Validate())

	assert.Error(t, cfg.ValidateStore(), "missing store endpoint")
	cfg.Supabase.URL = "https://test.supabase.co"
	assert.Error(t, cfg.ValidateStore(), "missing service key")
	cfg.Supabase.ServiceKey = "secret"
	assert.NoError(t, cfg.ValidateStore())
}
