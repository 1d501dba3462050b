package validator

import (
	"errors"
	"testing"

	"github.com/ridoystarlord/apdbschema/mapping"
	"github.com/ridoystarlord/apdbschema/record"
	"github.com/ridoystarlord/apdbschema/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diaObject() schema.TableDef {
	return schema.TableDef{
		Name: "DiaObject",
		Columns: []schema.ColumnDef{
			{Name: "diaObjectId", Kind: schema.KindBigInt},
			{Name: "ra", Kind: schema.KindDouble, Unit: "deg"},
			{Name: "decl", Kind: schema.KindDouble, Unit: "deg"},
			{Name: "radecTai", Kind: schema.KindDouble},
			{Name: "pixelId", Kind: schema.KindBigInt},
		},
	}
}

func afwMap() *mapping.Translator {
	return mapping.NewTranslator(map[string]map[string]string{
		"DiaObject": {"diaObjectId": "id", "ra": "coord_ra", "decl": "coord_dec"},
	})
}

func external(t *testing.T, extra ...record.Field) *record.Schema {
	t.Helper()
	s := record.MinimalSourceSchema()
	for _, f := range extra {
		_, err := s.AddField(f)
		require.NoError(t, err)
	}
	return s
}

func TestCheckCase(t *testing.T) {
	tests := []struct {
		name    string
		fields  []record.Field
		wantErr bool
	}{
		{name: "no_extra_fields"},
		{name: "exact_match", fields: []record.Field{{Name: "radecTai", Type: record.TypeDouble}}},
		{name: "unrelated_field", fields: []record.Field{{Name: "nDiaSources", Type: record.TypeLong}}},
		{name: "case_mismatch", fields: []record.Field{{Name: "RaDecTai", Type: record.TypeDouble}}, wantErr: true},
		{
			name: "exact_and_case_variant",
			fields: []record.Field{
				{Name: "radecTai", Type: record.TypeDouble},
				{Name: "RADECTAI", Type: record.TypeDouble},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCase(diaObject(), afwMap(), external(t, tt.fields...))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var nerr *schema.NamingError
			require.True(t, errors.As(err, &nerr))
			assert.Equal(t, "radecTai", nerr.Column)
		})
	}
}

func TestCheckCase_MappedName(t *testing.T) {
	ext := record.NewSchema()
	_, err := ext.AddField(record.Field{Name: "Coord_RA", Type: record.TypeAngle})
	require.NoError(t, err)

	err = CheckCase(diaObject(), afwMap(), ext)
	var nerr *schema.NamingError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, "ra", nerr.Column)
	assert.Equal(t, "coord_ra", nerr.Expected)
	assert.Equal(t, []string{"Coord_RA"}, nerr.Found)
}

func TestCheckUniqueNames(t *testing.T) {
	require.NoError(t, CheckUniqueNames(diaObject(), afwMap(), "record field"))

	table := diaObject()
	table.Columns = append(table.Columns, schema.ColumnDef{Name: "id", Kind: schema.KindBigInt})
	err := CheckUniqueNames(table, afwMap(), "record field")
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrConfiguration))
	assert.Contains(t, err.Error(), "diaObjectId and id")

	// without the mapping the names are distinct again
	assert.NoError(t, CheckUniqueNames(table, mapping.NewTranslator(nil), "database column"))
}

func TestAdoptFields(t *testing.T) {
	ext := external(t,
		record.Field{Name: "pixelId", Type: record.TypeLong},
		record.Field{Name: "nDiaSources", Type: record.TypeLong, Doc: "count"},
		record.Field{Name: "filterName", Type: record.TypeString, Size: 2},
	)
	table := diaObject()

	out, adopted, err := AdoptFields(table, afwMap(), ext)
	require.NoError(t, err)
	assert.Equal(t, []string{"parent", "nDiaSources", "filterName"}, adopted)
	assert.Len(t, out.Columns, len(table.Columns)+3)
	assert.Len(t, table.Columns, 5, "input must not be modified")

	nDia, ok := out.Column("nDiaSources")
	require.True(t, ok)
	assert.Equal(t, schema.KindBigInt, nDia.Kind)
	assert.True(t, nDia.Nullable)
	assert.Equal(t, "count", nDia.Description)
	require.NotNil(t, nDia.Default)

	filter, ok := out.Column("filterName")
	require.True(t, ok)
	assert.Equal(t, schema.KindChar, filter.Kind)
	assert.Equal(t, 2, filter.Length)
}

func TestAdoptFields_CaseCollision(t *testing.T) {
	ext := external(t, record.Field{Name: "RaDecTai", Type: record.TypeDouble})
	_, _, err := AdoptFields(diaObject(), afwMap(), ext)
	var nerr *schema.NamingError
	require.True(t, errors.As(err, &nerr))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, schema.KindInt, KindOf(record.TypeInt))
	assert.Equal(t, schema.KindBigInt, KindOf(record.TypeLong))
	assert.Equal(t, schema.KindFloat, KindOf(record.TypeFloat))
	assert.Equal(t, schema.KindDouble, KindOf(record.TypeDouble))
	assert.Equal(t, schema.KindDouble, KindOf(record.TypeAngle))
	assert.Equal(t, schema.KindChar, KindOf(record.TypeString))
	assert.Equal(t, schema.KindBool, KindOf(record.TypeFlag))
}

func TestValidateModels(t *testing.T) {
	good := &schema.Model{
		TableName:  "DiaObject",
		Columns:    []schema.Column{{Name: "diaObjectId"}, {Name: "validityStart"}},
		PrimaryKey: &schema.Constraint{Name: "PK_DiaObject", Columns: []string{"diaObjectId", "validityStart"}},
		Indexes:    []schema.Index{{Name: "IDX_DiaObject_validityStart", Columns: []string{"validityStart"}}},
	}
	nightly := &schema.Model{
		TableName: "DiaObjectNightly",
		Columns:   []schema.Column{{Name: "diaObjectId"}},
	}

	result := ValidateModels([]*schema.Model{good, nightly})
	assert.True(t, result.Valid)
	assert.NoError(t, result.Err())
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "no_primary_key", result.Warnings[0].Type)
}

func TestValidateModels_Errors(t *testing.T) {
	tests := []struct {
		name     string
		model    *schema.Model
		wantType string
	}{
		{
			name:     "bad_table_name",
			model:    &schema.Model{TableName: "1Dia", Columns: []schema.Column{{Name: "a"}}},
			wantType: "table_name",
		},
		{
			name:     "no_columns",
			model:    &schema.Model{TableName: "T"},
			wantType: "no_columns",
		},
		{
			name:     "duplicate_column",
			model:    &schema.Model{TableName: "T", Columns: []schema.Column{{Name: "a"}, {Name: "a"}}},
			wantType: "duplicate_column",
		},
		{
			name:     "bad_column_name",
			model:    &schema.Model{TableName: "T", Columns: []schema.Column{{Name: "a-b"}}},
			wantType: "column_name",
		},
		{
			name: "unknown_pk_column",
			model: &schema.Model{
				TableName:  "T",
				Columns:    []schema.Column{{Name: "a"}},
				PrimaryKey: &schema.Constraint{Name: "PK", Columns: []string{"pixelId"}},
			},
			wantType: "primary_key",
		},
		{
			name: "unknown_index_column",
			model: &schema.Model{
				TableName: "T",
				Columns:   []schema.Column{{Name: "a"}},
				Indexes:   []schema.Index{{Name: "IDX", Columns: []string{"b"}}},
			},
			wantType: "index",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateModels([]*schema.Model{tt.model})
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Equal(t, tt.wantType, result.Errors[0].Type)
			assert.True(t, errors.Is(result.Err(), schema.ErrConfiguration))
		})
	}
}
