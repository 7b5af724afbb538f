package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/idledger/internal/adapters/driven/export"
	"github.com/custodia-labs/idledger/internal/core/domain"
)

func TestExportService_Formats(t *testing.T) {
	svc := NewExportService(nil, export.All()...)

	assert.Equal(t, []string{"csv", "json", "markdown", "table"}, svc.Formats())
}

func TestExportService_CSV(t *testing.T) {
	a := fixtureCard(1, "A").Next(domain.ChangeKey("A2"), domain.ChangeKey("A3"))
	b := fixtureCard(2, "B")
	registry := NewRegistryService(seedCards(t, b, a), nil, nil, true)
	svc := NewExportService(registry, export.All()...)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), "csv", &buf))

	assert.Equal(t,
		"id,doc_key,aliases\n"+
			a.ID+",A3,\"A,A2\"\n"+
			b.ID+",B,\n",
		buf.String())
}

func TestExportService_Errors(t *testing.T) {
	t.Run("unknown format", func(t *testing.T) {
		registry := NewRegistryService(seedCards(t), nil, nil, true)
		svc := NewExportService(registry, export.All()...)

		err := svc.Export(context.Background(), "xml", &bytes.Buffer{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("collision in strict mode", func(t *testing.T) {
		registry := NewRegistryService(seedCards(t, fixtureCard(1, "X"), fixtureCard(2, "X")), nil, nil, true)
		svc := NewExportService(registry, export.All()...)

		var buf bytes.Buffer
		err := svc.Export(context.Background(), "json", &buf)

		assert.ErrorIs(t, err, domain.ErrKeyCollision)
		assert.Zero(t, buf.Len())
	})
}
