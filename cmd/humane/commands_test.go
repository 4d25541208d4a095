package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/humane/internal/config"
	"github.com/jonathan/humane/internal/server"
)

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"serve", "score", "rewrite", "migrate", "token"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestScorePosts_Text(t *testing.T) {
	var out bytes.Buffer

	err := scorePosts(&out, strings.NewReader(""), []string{"We", "need", "to", "leverage", "synergy"}, scoreOptions{})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "CRINGE SCORE: 24/100 (Slightly Corporate)")
	assert.Contains(t, got, "We need to **leverage** **synergy**")
	assert.Contains(t, got, "jargon")
	assert.Contains(t, got, "• Replace corporate buzzwords with simpler alternatives")
}

func TestScorePosts_StdinAndJSON(t *testing.T) {
	var out bytes.Buffer

	err := scorePosts(&out, strings.NewReader("Let's circle back going forward\n"), nil, scoreOptions{json: true})
	require.NoError(t, err)

	var result scoreOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, 10, result.Score)
	assert.Equal(t, "Authentic", result.Label)
	assert.Equal(t, []string{"Avoid cliché corporate phrases", "Remove unnecessary filler phrases"}, result.Recommendations)
	assert.Len(t, result.Hits, 2)
}

func TestScorePosts_EmptyInput(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, scorePosts(&out, strings.NewReader("  "), nil, scoreOptions{}))

	assert.Contains(t, out.String(), "CRINGE SCORE: 0/100 (Authentic)")
	assert.Contains(t, out.String(), "Your post looks good! No major issues found.")
}

func TestScorePosts_RulesFile(t *testing.T) {
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte(`
rules:
  - name: hype
    weight: 40
    terms: [rockstar]
`), 0o644))

	var out bytes.Buffer
	require.NoError(t, scorePosts(&out, nil, []string{"rockstar", "rockstar", "rockstar"}, scoreOptions{rulesFile: rules, json: true}))

	var result scoreOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, 100, result.Score)

	err := scorePosts(&out, nil, []string{"x"}, scoreOptions{rulesFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorContains(t, err, "failed to load rules")
}

func TestRunRewrite_RequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	err := runRewrite(rewriteCmd, []string{"hello"})

	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}

func TestRunToken(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "cli-test-secret-that-is-long-enough-for-hs256")
	t.Setenv("JWT_AUDIENCE", "authenticated")
	userID := uuid.New()
	tokenUser = userID.String()
	t.Cleanup(func() { tokenUser = "" })

	var out bytes.Buffer
	tokenCmd.SetOut(&out)
	t.Cleanup(func() { tokenCmd.SetOut(nil) })

	require.NoError(t, runToken(tokenCmd, nil))

	jwtCfg, err := config.NewJWTConfig()
	require.NoError(t, err)
	claims, err := server.NewJWTService(jwtCfg).ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.GetUserID())
}

func TestRunToken_InvalidUser(t *testing.T) {
	tokenUser = "not-a-uuid"
	t.Cleanup(func() { tokenUser = "" })

	assert.ErrorContains(t, runToken(tokenCmd, nil), "invalid --user")
}

func TestTokenValidator_DevelopmentWithoutSecret(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "")
	t.Setenv("JWT_SECRET", "")

	validator, err := tokenValidator(&config.AppConfig{Env: config.EnvDevelopment})
	require.NoError(t, err)
	assert.Nil(t, validator)

	_, err = tokenValidator(&config.AppConfig{Env: config.EnvProduction})
	assert.Error(t, err)
}
