package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewList_Empty(t *testing.T) {
	dir := initProject(t)
	out, err := runStmtimport(t, "review", "list", "--repo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No items awaiting review.")
}

func TestReviewList_RejectsArgs(t *testing.T) {
	_, err := runStmtimport(t, "review", "list", "extra")
	assert.Error(t, err)
}
