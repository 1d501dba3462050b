package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cols(names ...string) []ColumnDef {
	out := make([]ColumnDef, len(names))
	for i, n := range names {
		out[i] = ColumnDef{Name: n, Kind: KindDouble, Nullable: true}
	}
	return out
}

func TestMerge_NilExtraIsIdentity(t *testing.T) {
	base := []TableDef{{
		Name:    "DiaObject",
		Columns: cols("diaObjectId", "ra"),
		Indices: []IndexDef{{Name: "PK", Type: IndexPrimary, Columns: []string{"diaObjectId"}}},
	}}

	merged, err := Merge(base, nil)
	require.NoError(t, err)
	assert.Equal(t, base, merged)

	// result does not share storage with the input
	merged[0].Columns[0].Name = "changed"
	merged[0].Indices[0].Columns[0] = "changed"
	assert.Equal(t, "diaObjectId", base[0].Columns[0].Name)
	assert.Equal(t, "diaObjectId", base[0].Indices[0].Columns[0])
}

func TestMerge_ColumnsAndIndices(t *testing.T) {
	base := []TableDef{
		{
			Name:    "DiaObject",
			Columns: cols("diaObjectId", "validityStart", "ra"),
			Indices: []IndexDef{{Name: "PK", Type: IndexPrimary, Columns: []string{"diaObjectId", "validityStart"}}},
		},
		{Name: "DiaSource", Columns: cols("diaSourceId")},
	}
	extra := []TableDef{
		{
			Name: "DiaObject",
			Columns: []ColumnDef{
				{Name: "validityStart", Kind: KindDateTime, Description: "overridden"},
				{Name: "nDiaSources", Kind: KindInt},
			},
			Indices: []IndexDef{{Name: "IDX_ra", Type: IndexPlain, Columns: []string{"ra"}}},
		},
		{Name: "DiaObjectLast", Columns: cols("diaObjectId")},
	}

	merged, err := Merge(base, extra)
	require.NoError(t, err)
	require.Len(t, merged, 3)

	obj := merged[0]
	assert.Equal(t, []string{"diaObjectId", "validityStart", "ra", "nDiaSources"}, obj.ColumnNames())
	assert.Equal(t, KindDateTime, obj.Columns[1].Kind)
	assert.Equal(t, "overridden", obj.Columns[1].Description)
	require.Len(t, obj.Indices, 2)
	assert.Equal(t, "PK", obj.Indices[0].Name)
	assert.Equal(t, "IDX_ra", obj.Indices[1].Name)

	assert.Equal(t, "DiaSource", merged[1].Name)
	assert.Equal(t, "DiaObjectLast", merged[2].Name)
}

func TestMerge_ColumnCountGrowsByExtraOnlyColumns(t *testing.T) {
	base := []TableDef{{Name: "T", Columns: cols("a", "b", "c")}}
	extra := []TableDef{{Name: "T", Columns: cols("b", "d", "e")}}

	merged, err := Merge(base, extra)
	require.NoError(t, err)
	assert.Len(t, merged[0].Columns, 5)
}

func TestMerge_Errors(t *testing.T) {
	tests := []struct {
		name  string
		base  []TableDef
		extra []TableDef
	}{
		{
			name:  "duplicate_base_table",
			base:  []TableDef{{Name: "T"}, {Name: "T"}},
			extra: nil,
		},
		{
			name:  "duplicate_extra_table",
			base:  []TableDef{{Name: "T"}},
			extra: []TableDef{{Name: "X"}, {Name: "X"}},
		},
		{
			name: "second_primary_key",
			base: []TableDef{{
				Name:    "T",
				Columns: cols("a", "b"),
				Indices: []IndexDef{{Name: "PK", Type: IndexPrimary, Columns: []string{"a"}}},
			}},
			extra: []TableDef{{
				Name:    "T",
				Indices: []IndexDef{{Name: "PK2", Type: IndexPrimary, Columns: []string{"b"}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Merge(tt.base, tt.extra)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
		})
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("bigint")
	require.NoError(t, err)
	assert.Equal(t, KindBigInt, k)

	_, err = ParseKind("DECIMAL")
	require.Error(t, err)

	assert.False(t, KindBlob.HasImplicitDefault())
	assert.False(t, KindDateTime.HasImplicitDefault())
	assert.True(t, KindFloat.HasImplicitDefault())
}

func TestNamingError_Message(t *testing.T) {
	err := &NamingError{Table: "DiaObject", Column: "radecTai", Expected: "radecTai", Found: []string{"RaDecTai"}}
	assert.Contains(t, err.Error(), `"RaDecTai"`)
	assert.Contains(t, err.Error(), "DiaObject")
}
