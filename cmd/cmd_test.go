package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/cloudsync/internal/aggregate"
	"github.com/conneroisu/cloudsync/internal/cloud"
	"github.com/conneroisu/cloudsync/internal/config"
	"github.com/conneroisu/cloudsync/internal/orchestrator"
	"github.com/conneroisu/cloudsync/internal/prompt"
	"github.com/conneroisu/cloudsync/internal/trigger"
)

const (
	subdomainA = "aaaaaaaaaaaaaaaaaaaaaaa"
	subdomainB = "bbbbbbbbbbbbbbbbbbbbbbb"
)

type fakeLister struct {
	servers []cloud.Server
	err     error
	calls   int
}

func (f *fakeLister) UserServers(ctx context.Context, apiKey, apiSecret string) ([]cloud.Server, error) {
	f.calls++
	return f.servers, f.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.Set("watch.artifact", t.TempDir()+"/output.js")
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func TestResolveSessionUsesConfiguredValues(t *testing.T) {
	folder := t.TempDir()
	cfg := testConfig(t)
	cfg.API.Key = "key"
	cfg.API.Secret = "secret"
	cfg.Watch.Folder = folder
	cfg.Watch.Mode = "auto-save"
	cfg.Watch.Subdomain = subdomainA

	lister := &fakeLister{}
	out := &bytes.Buffer{}
	session, err := resolveSession(context.Background(), cfg, prompt.NewPrompter(strings.NewReader(""), out), lister)
	require.NoError(t, err)

	assert.Equal(t, orchestrator.Session{
		Folder:    folder,
		Subdomain: subdomainA,
		APIKey:    "key",
		APISecret: "secret",
		Mode:      config.ModeAuto,
	}, session)
	assert.Zero(t, lister.calls)
	assert.Empty(t, out.String())
}

func TestResolveSessionPromptsForMissingValues(t *testing.T) {
	folder := t.TempDir()
	cfg := testConfig(t)
	cfg.Watch.Folder = "/missing/folder"
	cfg.Watch.Mode = "sometimes"
	cfg.Watch.Subdomain = "zzz"

	lister := &fakeLister{servers: []cloud.Server{
		{Name: "First", Subdomain: subdomainA},
		{Name: "Second", Subdomain: subdomainB},
	}}

	input := strings.Join([]string{
		"key",    // api key
		"secret", // api secret
		folder,   // folder
		"2",      // mode
		"1",      // server
	}, "\n") + "\n"
	out := &bytes.Buffer{}

	session, err := resolveSession(context.Background(), cfg, prompt.NewPrompter(strings.NewReader(input), out), lister)
	require.NoError(t, err)

	assert.Equal(t, "key", session.APIKey)
	assert.Equal(t, "secret", session.APISecret)
	assert.Equal(t, folder, session.Folder)
	assert.Equal(t, config.ModeSingle, session.Mode)
	assert.Equal(t, subdomainB, session.Subdomain)
	assert.Equal(t, 1, lister.calls)

	text := out.String()
	assert.Contains(t, text, "File not found!")
	assert.Contains(t, text, "Invalid input!")
	assert.Contains(t, text, "Subdomain not found!")
}

func TestResolveSessionServerListFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.Key = "key"
	cfg.API.Secret = "secret"
	cfg.Watch.Folder = t.TempDir()
	cfg.Watch.Mode = "single"

	lister := &fakeLister{err: errors.New("connection refused")}
	_, err := resolveSession(context.Background(), cfg, prompt.NewPrompter(strings.NewReader(""), &bytes.Buffer{}), lister)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list servers")
}

func TestNewSourceMatchesMode(t *testing.T) {
	cfg := testConfig(t)
	filter := aggregate.Filter{Extension: ".js", DependencyDir: "node_modules"}
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(""))

	testCases := []struct {
		mode config.Mode
		want trigger.Source
	}{
		{config.ModeManual, &trigger.KeySource{}},
		{config.ModeAuto, &trigger.EventSource{}},
		{config.ModeSingle, &trigger.OnceSource{}},
	}

	for _, tc := range testCases {
		t.Run(tc.mode.String(), func(t *testing.T) {
			session := orchestrator.Session{Folder: t.TempDir(), Mode: tc.mode}
			src := newSource(cfg, session, filter, cmd, nil, func(bool) {})
			assert.IsType(t, tc.want, src)
			assert.Equal(t, tc.mode.String(), src.Name())
		})
	}
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults(viper.GetViper())
	viper.Set("api.key", "my-api-key")
	viper.Set("api.secret", "my-api-secret")
	viper.Set("watch.folder", "cloud")

	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	require.NoError(t, runConfigShow(cmd, nil))
	assert.NotContains(t, out.String(), "my-api-secret")
	assert.NotContains(t, out.String(), "my-api-key")

	var shown config.Config
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &shown))
	assert.Equal(t, "cloud", shown.Watch.Folder)
	assert.Equal(t, "[REDACTED]", shown.API.Secret)
	assert.Equal(t, "https://admin.moralis.io", shown.API.BaseURI)
}

func TestVersionCommand(t *testing.T) {
	t.Cleanup(func() { versionFormat, versionShort = "text", false })

	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	versionFormat = "json"
	require.NoError(t, runVersionCommand(cmd, nil))
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "go_version")

	out.Reset()
	versionFormat = "text"
	require.NoError(t, runVersionCommand(cmd, nil))
	assert.True(t, strings.HasPrefix(out.String(), "cloudsync "))

	versionFormat = "xml"
	assert.Error(t, runVersionCommand(cmd, nil))
}

func TestWatchAliases(t *testing.T) {
	assert.Contains(t, watchCmd.Aliases, "watch-cloud-folder")
	assert.Contains(t, watchCmd.Aliases, "w")
}

func TestBindFlagsUnknownFlag(t *testing.T) {
	t.Cleanup(viper.Reset)
	cmd := &cobra.Command{}
	addAPIFlags(cmd.Flags())
	assert.NoError(t, bindFlags(cmd.Flags(), apiBindings))
	assert.Error(t, bindFlags(cmd.Flags(), watchBindings))
}

func TestServersCommandListsServers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cli/userServers", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"servers":[{"name":"prod","subdomain":"` + subdomainA + `"}]}`))
	}))
	defer srv.Close()

	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults(viper.GetViper())
	viper.Set("api.key", "key")
	viper.Set("api.secret", "secret")
	viper.Set("api.base_uri", srv.URL)

	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetContext(context.Background())

	require.NoError(t, runServers(cmd, nil))
	assert.Contains(t, out.String(), "prod")
	assert.Contains(t, out.String(), subdomainA)
}
