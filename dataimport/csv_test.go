package dataimport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTestCSV(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "data.csv")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSVInfersColumnTypes(t *testing.T) {
	path := writeTestCSV(t, "age,city,label\n30,Praha,1\n41,Brno,0\n")
	ds, err := LoadCSV(path)
	assert.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	ages, err := ds.Numeric("age")
	assert.NoError(t, err)
	assert.Equal(t, []float64{30, 41}, ages)

	cities, err := ds.Strings("city")
	assert.NoError(t, err)
	assert.Equal(t, []string{"Praha", "Brno"}, cities)
}

func TestLoadCSVMixedColumnFallsBackToString(t *testing.T) {
	path := writeTestCSV(t, "v\n1\ntwo\n3\n")
	ds, err := LoadCSV(path)
	assert.NoError(t, err)
	vals, err := ds.Strings("v")
	assert.NoError(t, err)
	assert.Equal(t, []string{"1", "two", "3"}, vals)
}

func TestLoadCSVHeaderOnly(t *testing.T) {
	path := writeTestCSV(t, "a,b\n")
	ds, err := LoadCSV(path)
	assert.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.True(t, ds.HasColumn("a"))
}

func TestLoadCSVEmptyFile(t *testing.T) {
	path := writeTestCSV(t, "")
	_, err := LoadCSV(path)
	assert.Error(t, err)
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
