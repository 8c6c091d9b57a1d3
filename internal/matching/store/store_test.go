package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/costree/internal/database/dbtest"
	"github.com/MrJamesThe3rd/costree/internal/matching/store"
)

func TestStore_FindMatch(t *testing.T) {
	s := store.New(dbtest.Open(t, "code_mappings"))
	ctx := context.Background()

	require.NoError(t, s.CreateMapping(ctx, "CONCRETO", "01.01"))
	require.NoError(t, s.CreateMapping(ctx, "CONCRETO USINADO", "01.03"))

	tests := []struct {
		name        string
		description string
		want        string
	}{
		{name: "longest pattern wins", description: "LANÇAMENTO CONCRETO USINADO FCK30", want: "01.03"},
		{name: "shorter pattern", description: "CONCRETO MAGRO", want: "01.01"},
		{name: "no match", description: "PINTURA", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindMatch(ctx, tt.description)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
