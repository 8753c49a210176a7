package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Status Command Tests

func TestStatusCmd_Use(t *testing.T) {
	assert.Equal(t, "status", statusCmd.Use)
}

func TestStatusCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Documents: 2")
	assert.Contains(t, buf.String(), "Chunks:    8")
	assert.Contains(t, buf.String(), "Avg chunks/document: 4.0")
	assert.Contains(t, buf.String(), "completed: 2")
}

func TestStatusCmd_FailsWithoutService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	statusService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

// Projection Command Tests

func TestProjectionCmd_Use(t *testing.T) {
	assert.Equal(t, "projection", projectionCmd.Use)
}

func TestProjectionCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"projection"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Projected 1 chunks")
	assert.Contains(t, buf.String(), "chunk-1")
	assert.Contains(t, buf.String(), "cluster 0")
}

func TestProjectionCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"projection", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
		projectionJSON = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"ChunkID": "chunk-1"`)
}

// Version Command Tests

func TestVersionCmd_Executes(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "corpora version")
}

// Root Command Tests

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "corpora", rootCmd.Use)
}

func TestRootCmd_HasCommands(t *testing.T) {
	commands := rootCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "ingest")
	assert.Contains(t, commandNames, "document")
	assert.Contains(t, commandNames, "search")
	assert.Contains(t, commandNames, "cluster")
	assert.Contains(t, commandNames, "anomaly")
	assert.Contains(t, commandNames, "quality")
	assert.Contains(t, commandNames, "status")
	assert.Contains(t, commandNames, "projection")
	assert.Contains(t, commandNames, "watch")
	assert.Contains(t, commandNames, "version")
}
