package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBRollback_RequiresConfirmation(t *testing.T) {
	rollbackConfirmFlag = false
	err := dbRollbackCmd.RunE(dbRollbackCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestDBCommands_Registered(t *testing.T) {
	want := []string{"init", "migrate", "status", "rollback", "lock", "unlock"}
	var got []string
	for _, c := range dbCmd.Commands() {
		got = append(got, c.Name())
	}
	assert.ElementsMatch(t, want, got)
	assert.NotNil(t, dbRollbackCmd.Flags().Lookup("yes"))
}
