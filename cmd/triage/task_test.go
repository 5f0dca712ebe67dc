package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalagman/triage/internal/task"
)

func TestTaskUpdatePatch(t *testing.T) {
	t.Parallel()

	var (
		fields taskFields
		title  string
	)
	cmd := &cobra.Command{Use: "update"}
	fields.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "")

	_, err := fields.patch(cmd, title)
	require.Error(t, err, "no flags set")

	require.NoError(t, cmd.Flags().Parse([]string{"--importance", "9", "--depends-on", "3,4", "--due", "2025-12-01"}))
	patch, err := fields.patch(cmd, title)
	require.NoError(t, err)
	assert.Nil(t, patch.Title)
	assert.Nil(t, patch.EstimatedHours)
	require.NotNil(t, patch.Importance)
	assert.Equal(t, 9, *patch.Importance)
	require.NotNil(t, patch.Dependencies)
	assert.Equal(t, []task.ID{"3", "4"}, *patch.Dependencies)
	require.NotNil(t, patch.DueDate)
	assert.Equal(t, "2025-12-01", patch.DueDate.String())
}

func TestTaskUpdatePatchRejectsBadDate(t *testing.T) {
	t.Parallel()

	var fields taskFields
	cmd := &cobra.Command{Use: "update"}
	fields.register(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--due", "soon"}))

	_, err := fields.patch(cmd, "")
	require.Error(t, err)
}
