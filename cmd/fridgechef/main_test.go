package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fridgechef/internal/config"
	"github.com/vbonduro/fridgechef/internal/llm"
)

// fakeModel answers by operation and records the last request.
type fakeModel struct {
	replies map[string]string
	last    *llm.Request
}

func (m *fakeModel) Complete(_ context.Context, req *llm.Request) (string, error) {
	m.last = req
	return m.replies[req.Operation], nil
}

func testConfig() *config.Config {
	return &config.Config{
		ListenAddr:        "127.0.0.1:0",
		ModelBackend:      config.BackendOpenAI,
		ModelTimeout:      5 * time.Second,
		MaxImageDimension: 1568,
		SessionTTL:        time.Minute,
		SessionMax:        10,
	}
}

func newTestApp(out *bytes.Buffer, model llm.Model) *App {
	return &App{
		Out:        out,
		Err:        out,
		LoadConfig: func() (*config.Config, error) { return testConfig(), nil },
		NewLogger: func(*config.Config) (*slog.Logger, func(), error) {
			return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
		},
		NewModel: func(context.Context, *config.Config, *slog.Logger) (llm.Model, error) {
			return model, nil
		},
		ReadFile: os.ReadFile,
	}
}

func execute(t *testing.T, app *App, args ...string) error {
	t.Helper()
	cmd := newRootCmd(app)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestDetectCommand(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	path := t.TempDir() + "/fridge.png"
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	model := &fakeModel{replies: map[string]string{
		llm.OpDetectIngredients: `[{"name":"milk","confidence":0.8}]`,
	}}
	var out bytes.Buffer
	require.NoError(t, execute(t, newTestApp(&out, model), "detect", path))

	assert.JSONEq(t, `{"ingredients":[{"name":"milk","confidence":0.8}]}`, out.String())
	require.NotNil(t, model.last.Image)
	assert.Equal(t, "image/png", model.last.Image.MimeType)
}

func TestDetectCommandMissingFile(t *testing.T) {
	var out bytes.Buffer
	err := execute(t, newTestApp(&out, &fakeModel{}), "detect", t.TempDir()+"/missing.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read image")
}

func TestRecipesCommand(t *testing.T) {
	model := &fakeModel{replies: map[string]string{
		llm.OpGenerateRecipes: `[{"id":"1","title":"Pancakes","cookingTime":20,"difficulty":"easy","matchPercentage":88,"servings":2}]`,
	}}
	var out bytes.Buffer
	require.NoError(t, execute(t, newTestApp(&out, model), "recipes", "flour", "egg", "milk"))

	var body struct {
		Recipes []struct {
			Title      string `json:"title"`
			Difficulty string `json:"difficulty"`
		} `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	require.Len(t, body.Recipes, 1)
	assert.Equal(t, "Pancakes", body.Recipes[0].Title)
	assert.Equal(t, "Easy", body.Recipes[0].Difficulty)
	assert.Contains(t, model.last.Prompt, "flour, egg, milk")
}

func TestRecipesCommandRequiresIngredients(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, execute(t, newTestApp(&out, &fakeModel{}), "recipes"))
}

func TestDetailCommand(t *testing.T) {
	model := &fakeModel{replies: map[string]string{
		llm.OpRecipeDetail: `{"description":"Fluffy.","ingredients":[{"name":"Flour","amount":"1 cup","available":true}],"instructions":["Mix.","Fry."],"nutrition":{"calories":250,"protein":"8g","carbs":"30g","fat":"9g"}}`,
	}}
	var out bytes.Buffer
	require.NoError(t, execute(t, newTestApp(&out, model), "detail", "Pancakes", "--have", "flour,egg"))

	var body struct {
		Details struct {
			Description  string   `json:"description"`
			Instructions []string `json:"instructions"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Equal(t, "Fluffy.", body.Details.Description)
	assert.Equal(t, []string{"Mix.", "Fry."}, body.Details.Instructions)
	assert.Contains(t, model.last.Prompt, "Pancakes")
	assert.Contains(t, model.last.Prompt, "Available ingredients: flour, egg")
}

func TestCommandSurfacesConfigError(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(&out, &fakeModel{})
	app.LoadConfig = func() (*config.Config, error) {
		return nil, errors.New("invalid configuration: MODEL_BACKEND: unknown backend \"bard\"")
	}
	err := execute(t, app, "recipes", "egg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestServeStopsWhenContextIsCancelled(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(newTestApp(&out, &fakeModel{}))
	cmd.SetArgs([]string{"serve"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
}

func TestNewModelSelectsBackend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		backend string
		wantErr bool
	}{
		{config.BackendOpenAI, false},
		{config.BackendClaude, false},
		{config.BackendGemini, false},
		{config.BackendOllama, false},
		{"bard", true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := testConfig()
			cfg.ModelBackend = tt.backend
			m, err := newModel(context.Background(), cfg, logger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, m)
		})
	}
}

func TestMissingCredentialReachesCaller(t *testing.T) {
	cfg := testConfig()
	m, err := newModel(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	_, err = m.Complete(context.Background(), &llm.Request{Operation: llm.OpGenerateRecipes, Prompt: "hi"})
	var cfgErr *llm.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
